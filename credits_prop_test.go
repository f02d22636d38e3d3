package credits_test

import (
	"context"
	"testing"

	"pgregory.net/rapid"

	"github.com/clipforge/credits"
	"github.com/clipforge/credits/entitlement"
	"github.com/clipforge/credits/store/memory"
	"github.com/clipforge/credits/tier"
)

// model is a reference simulation of the session counters. Random
// operation sequences are replayed against both the engine and the
// model; any divergence is a bug.
type model struct {
	tier  tier.Tier
	used  int
	bonus int
}

func newModel() model { return model{tier: tier.Free} }

// startEngine builds an engine without t.Cleanup: rapid runs the
// property body many times, and each iteration stops its own engine.
func startEngine(rt *rapid.T) *credits.Ledger {
	engine := credits.New(memory.New(), credits.WithLogger(quietLogger()))
	if err := engine.Start(context.Background()); err != nil {
		rt.Fatalf("Start() = %v", err)
	}
	return engine
}

func (m model) limit() int { return m.tier.BaseAllowance() + m.bonus }

func (m *model) consume() bool {
	if m.used >= m.limit() {
		return false
	}
	m.used++
	return true
}

func (m *model) changeTier(target tier.Tier) {
	if m.tier == tier.Free && target != tier.Free {
		m.used = 0
	}
	m.tier = target
}

func (m *model) addBonus(amount int) { m.bonus += amount }

func (m *model) reset() { *m = newModel() }

func TestEngineMatchesReferenceModel(t *testing.T) {
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		engine := startEngine(rt)
		defer engine.Stop() //nolint:errcheck
		m := newModel()

		steps := rapid.IntRange(1, 200).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				result := engine.TryConsume(ctx)
				if want := m.consume(); result.Allowed != want {
					rt.Fatalf("step %d: TryConsume allowed = %v, model says %v (model %+v)",
						i, result.Allowed, want, m)
				}

			case 1:
				target := rapid.SampledFrom(tier.All()).Draw(rt, "tier")
				if err := engine.ChangeTier(ctx, target); err != nil {
					rt.Fatalf("step %d: ChangeTier(%s) = %v", i, target, err)
				}
				m.changeTier(target)

			case 2:
				amount := rapid.IntRange(1, 50).Draw(rt, "amount")
				if err := engine.AddBonus(ctx, amount); err != nil {
					rt.Fatalf("step %d: AddBonus(%d) = %v", i, amount, err)
				}
				m.addBonus(amount)

			case 3:
				if err := engine.Reset(ctx); err != nil {
					rt.Fatalf("step %d: Reset() = %v", i, err)
				}
				m.reset()
			}

			snap := engine.Snapshot()
			if snap.Tier != m.tier || snap.Used != m.used || snap.Bonus != m.bonus {
				rt.Fatalf("step %d: engine {%s, %d, %d} diverged from model %+v",
					i, snap.Tier, snap.Used, snap.Bonus, m)
			}
		}
	})
}

func TestAdmissionsNeverExceedLimit(t *testing.T) {
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		engine := startEngine(rt)
		defer engine.Stop() //nolint:errcheck

		target := rapid.SampledFrom(tier.All()).Draw(rt, "tier")
		if err := engine.ChangeTier(ctx, target); err != nil {
			rt.Fatal(err)
		}
		bonus := rapid.IntRange(0, 30).Draw(rt, "bonus")
		if bonus > 0 {
			if err := engine.AddBonus(ctx, bonus); err != nil {
				rt.Fatal(err)
			}
		}

		limit := target.BaseAllowance() + bonus
		attempts := limit + rapid.IntRange(1, 20).Draw(rt, "extra")

		admitted := 0
		for i := 0; i < attempts; i++ {
			if r := engine.TryConsume(ctx); r.Allowed {
				admitted++
			}
		}

		if admitted != limit {
			rt.Fatalf("admitted %d of %d attempts, want exactly %d", admitted, attempts, limit)
		}
		if got := engine.Used(); got > engine.Limit() {
			rt.Fatalf("Used() %d exceeds Limit() %d", got, engine.Limit())
		}
	})
}

func TestWarningsAreDeterminedByHeadroom(t *testing.T) {
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		engine := startEngine(rt)
		defer engine.Stop() //nolint:errcheck

		target := rapid.SampledFrom(tier.All()).Draw(rt, "tier")
		if err := engine.ChangeTier(ctx, target); err != nil {
			rt.Fatal(err)
		}

		attempts := rapid.IntRange(1, 120).Draw(rt, "attempts")
		for i := 0; i < attempts; i++ {
			result := engine.TryConsume(ctx)

			var want entitlement.Warning
			if result.Allowed {
				want = entitlement.WarningFor(result.Remaining, result.Limit)
			} else {
				want = entitlement.WarningLimitReached
			}
			if result.Warning != want {
				rt.Fatalf("attempt %d: warning %q, want %q (result %+v)",
					i, result.Warning, want, result)
			}
		}
	})
}
