package recorder_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/credits"
	"github.com/clipforge/credits/recorder"
	"github.com/clipforge/credits/store"
	"github.com/clipforge/credits/store/memory"
	"github.com/clipforge/credits/tier"
)

type captureRecorder struct {
	mu     sync.Mutex
	events []string
	props  []map[string]any
}

func (c *captureRecorder) Record(_ context.Context, event string, props map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	c.props = append(c.props, props)
	return nil
}

func (c *captureRecorder) recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

func (c *captureRecorder) propsFor(event string) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.events {
		if e == event {
			return c.props[i]
		}
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, opts ...recorder.Option) (*credits.Ledger, *captureRecorder) {
	t.Helper()

	rec := &captureRecorder{}
	engine := credits.New(memory.New(),
		credits.WithLogger(quietLogger()),
		credits.WithPlugin(recorder.New(rec, opts...)),
	)
	require.NoError(t, engine.Start(context.Background()))
	t.Cleanup(func() { _ = engine.Stop() })

	return engine, rec
}

func TestLifecycleEventVocabulary(t *testing.T) {
	ctx := context.Background()
	engine, rec := newEngine(t)

	require.NoError(t, engine.ChangeTier(ctx, tier.Creator))
	engine.TryConsume(ctx)
	require.NoError(t, engine.AddBonus(ctx, 5))
	require.NoError(t, engine.Reset(ctx))
	engine.TryConsume(ctx) // free allowance, raises out_of_credits
	engine.TryConsume(ctx) // denied

	want := []string{
		recorder.EventTierChanged,
		recorder.EventCreditConsumed,
		recorder.EventCreditsPurchased,
		recorder.EventSessionReset,
		recorder.EventCreditConsumed,
		recorder.EventCreditWarning,
		recorder.EventLimitReached,
	}
	assert.Equal(t, want, rec.recorded())
}

func TestEventProperties(t *testing.T) {
	ctx := context.Background()
	engine, rec := newEngine(t)

	require.NoError(t, engine.ChangeTier(ctx, tier.Agency))
	require.NoError(t, engine.AddBonus(ctx, 5))

	tierProps := rec.propsFor(recorder.EventTierChanged)
	require.NotNil(t, tierProps)
	assert.Equal(t, "FREE", tierProps["from"])
	assert.Equal(t, "AGENCY", tierProps["to"])
	assert.Equal(t, true, tierProps["usage_reset"])

	bonusProps := rec.propsFor(recorder.EventCreditsPurchased)
	require.NotNil(t, bonusProps)
	assert.Equal(t, 5, bonusProps["amount"])
	assert.Equal(t, 5, bonusProps["bonus"])

	// Every event carries a unique event id.
	assert.Contains(t, tierProps["event_id"], "evt_")
	assert.Contains(t, bonusProps["event_id"], "evt_")
	assert.NotEqual(t, tierProps["event_id"], bonusProps["event_id"])
}

func TestDenialIsNotDoubleCounted(t *testing.T) {
	ctx := context.Background()
	engine, rec := newEngine(t)

	engine.TryConsume(ctx) // exhausts free allowance
	engine.TryConsume(ctx) // denied

	limitReached := 0
	for _, e := range rec.recorded() {
		if e == recorder.EventLimitReached {
			limitReached++
		}
	}
	assert.Equal(t, 1, limitReached, "a denial should record exactly one limit_reached")
}

func TestDisabledEventsAreSkipped(t *testing.T) {
	ctx := context.Background()
	engine, rec := newEngine(t, recorder.WithDisabledEvents(recorder.EventCreditConsumed))

	require.NoError(t, engine.AddBonus(ctx, 3))
	engine.TryConsume(ctx)

	events := rec.recorded()
	assert.Contains(t, events, recorder.EventCreditsPurchased)
	assert.NotContains(t, events, recorder.EventCreditConsumed)
}

func TestEnabledEventsAllowlist(t *testing.T) {
	ctx := context.Background()
	engine, rec := newEngine(t, recorder.WithEnabledEvents(recorder.EventLimitReached))

	engine.TryConsume(ctx)
	engine.TryConsume(ctx) // denied

	assert.Equal(t, []string{recorder.EventLimitReached}, rec.recorded())
}

func TestSessionRestoredEvent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	rec := &captureRecorder{}

	require.NoError(t, st.Set(ctx, store.KeyCreditsUsed, "1"))
	require.NoError(t, st.Set(ctx, store.KeyExtraCredits, "7"))

	engine := credits.New(st,
		credits.WithLogger(quietLogger()),
		credits.WithPlugin(recorder.New(rec)),
	)
	require.NoError(t, engine.Start(ctx))
	defer engine.Stop() //nolint:errcheck

	props := rec.propsFor(recorder.EventSessionRestored)
	require.NotNil(t, props)
	assert.Equal(t, 1, props["used"])
	assert.Equal(t, 7, props["bonus"])
}
