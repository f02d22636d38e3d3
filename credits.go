package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/clipforge/credits/entitlement"
	"github.com/clipforge/credits/plugin"
	"github.com/clipforge/credits/session"
	"github.com/clipforge/credits/store"
	"github.com/clipforge/credits/tier"
)

// Ledger is the entitlement engine: it decides, for every consumption
// request, whether the caller may proceed, mutates the session counters
// when it does, and raises the matching warning signals.
//
// The in-memory state is authoritative. Persistence writes are
// best-effort and asynchronous; a dead store degrades durability, never
// decisions.
type Ledger struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	// mu serializes all state access. A consumption check is a
	// read-modify-write; two concurrent calls must never both admit
	// on the last unit of headroom.
	mu      sync.Mutex
	state   session.State
	cleared bool

	// Background persistence
	persistCh chan persistRequest
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	started   bool

	persistBuffer int
	skipMigrate   bool
}

// persistRequest is an absolute snapshot of the two persisted counters,
// or an instruction to clear them. Snapshots are absolute values, so a
// dropped intermediate write is harmless as long as a later one lands.
type persistRequest struct {
	used  int
	bonus int
	clear bool
}

// New creates a new Ledger instance backed by the given store.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:         s,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		state:         session.New(),
		stopChan:      make(chan struct{}),
		persistBuffer: 256,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.persistCh = make(chan persistRequest, l.persistBuffer)

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPersistBuffer sets the capacity of the asynchronous persistence
// queue. Must be called before Start.
func WithPersistBuffer(size int) Option {
	return func(l *Ledger) {
		if size > 0 {
			l.persistBuffer = size
		}
	}
}

// WithoutMigrate skips store migration on Start. Use when migrations
// are managed externally.
func WithoutMigrate() Option {
	return func(l *Ledger) {
		l.skipMigrate = true
	}
}

// Start migrates the store, rehydrates persisted counters, and begins
// the background persistence worker.
//
// A missing or unreachable store is degraded operation, not failure:
// the engine continues with in-memory defaults. Corrupt persisted
// values are a boundary error and abort startup.
func (l *Ledger) Start(ctx context.Context) error {
	if !l.skipMigrate {
		if err := l.store.Migrate(ctx); err != nil {
			err = fmt.Errorf("%w: %w", ErrMigrationFailed, err)
			l.logger.Warn("store migration failed, continuing without durability",
				"error", err,
			)
			l.plugins.EmitPersistFailed(ctx, err)
		}
	}

	if err := l.rehydrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.wg.Add(1)
	go l.persistWorker(ctx)

	l.mu.Lock()
	l.started = true
	l.mu.Unlock()

	l.logger.Info("credits engine started",
		"tier", l.Tier().String(),
		"used", l.Used(),
		"bonus", l.Bonus(),
		"persist_buffer", l.persistBuffer,
	)

	return nil
}

// Stop shuts down the Ledger: the persistence queue is drained, a final
// snapshot is written, plugins are notified, and the store is closed.
// Stop is idempotent; calls after the first return nil.
func (l *Ledger) Stop() error {
	var err error
	l.stopOnce.Do(func() { err = l.stop() })
	return err
}

func (l *Ledger) stop() error {
	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()

	l.mu.Lock()
	snap := l.state
	cleared := l.cleared
	l.started = false
	l.mu.Unlock()

	if !cleared {
		l.persist(ctx, persistRequest{used: snap.Used, bonus: snap.Bonus})
	}

	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// ──────────────────────────────────────────────────
// Consumption
// ──────────────────────────────────────────────────

// TryConsume evaluates one consumption request against the session
// state. A deny is a normal outcome carried in the Result, never an
// error: callers must branch on Result.Allowed and suppress the gated
// action when it is false.
//
// On admit the mutation is applied and visible to subsequent calls
// before any hook fires; warning hooks always fire after the admit
// hooks, so notification layers present warnings after the action's
// effects.
func (l *Ledger) TryConsume(ctx context.Context) *entitlement.Result {
	l.mu.Lock()

	limit := l.state.Limit()

	if l.state.Used >= limit {
		result := &entitlement.Result{
			Allowed:   false,
			Used:      l.state.Used,
			Limit:     limit,
			Remaining: 0,
			Warning:   entitlement.WarningLimitReached,
			Reason:    "limit reached",
		}
		l.mu.Unlock()

		l.logger.Warn("consumption denied",
			"used", result.Used,
			"limit", result.Limit,
		)
		l.plugins.EmitConsumeDenied(ctx, result)
		l.plugins.EmitWarningRaised(ctx, string(result.Warning), result)

		return result
	}

	l.state.Used++
	l.state.Touch()
	l.cleared = false
	used := l.state.Used
	bonus := l.state.Bonus
	remaining := limit - used
	queued := l.enqueuePersist(persistRequest{used: used, bonus: bonus})
	l.mu.Unlock()

	result := &entitlement.Result{
		Allowed:   true,
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
		Warning:   entitlement.WarningFor(remaining, limit),
	}

	if !queued {
		l.persistFailed(ctx, ErrPersistBufferFull)
	}

	l.logger.Info("consumption admitted",
		"used", used,
		"limit", limit,
		"remaining", remaining,
	)
	l.plugins.EmitConsumeAdmitted(ctx, result)
	if result.HasWarning() {
		l.plugins.EmitWarningRaised(ctx, string(result.Warning), result)
	}

	return result
}

// ──────────────────────────────────────────────────
// Tier transitions
// ──────────────────────────────────────────────────

// ChangeTier moves the session to the requested tier. The transition is
// total over all tier pairs:
//
//   - Selecting FREE keeps the counters: a downgrade does not forgive
//     historical usage.
//   - Upgrading from FREE to a paid tier resets the usage counter; the
//     user is establishing a new paid entitlement period.
//   - Moving between paid tiers (or re-selecting the current paid
//     tier) carries usage over.
//
// Bonus credits survive every transition. For paid targets the caller
// invokes this only after its external payment confirmation.
func (l *Ledger) ChangeTier(ctx context.Context, target tier.Tier) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTier, string(target))
	}

	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return fmt.Errorf("%w: call Start before ChangeTier", ErrNotStarted)
	}
	old := l.state.Tier
	usageReset := old == tier.Free && target != tier.Free

	l.state.Tier = target
	if usageReset {
		l.state.Used = 0
	}
	l.state.Touch()
	l.cleared = false
	used := l.state.Used
	bonus := l.state.Bonus
	queued := l.enqueuePersist(persistRequest{used: used, bonus: bonus})
	l.mu.Unlock()

	if !queued {
		l.persistFailed(ctx, ErrPersistBufferFull)
	}

	l.logger.Info("tier changed",
		"from", old.String(),
		"to", target.String(),
		"usage_reset", usageReset,
	)
	l.plugins.EmitTierChanged(ctx, old.String(), target.String(), usageReset)

	return nil
}

// ──────────────────────────────────────────────────
// Bonus credits
// ──────────────────────────────────────────────────

// AddBonus applies a purchased credit pack to the session. The caller
// invokes this only after its external payment confirmation; the
// amount must be a positive integer.
func (l *Ledger) AddBonus(ctx context.Context, amount int) error {
	if amount <= 0 {
		return ValidationError{
			Field:   "amount",
			Message: fmt.Sprintf("must be a positive integer, got %d", amount),
		}
	}

	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return fmt.Errorf("%w: call Start before AddBonus", ErrNotStarted)
	}
	l.state.Bonus += amount
	l.state.Touch()
	l.cleared = false
	used := l.state.Used
	bonus := l.state.Bonus
	queued := l.enqueuePersist(persistRequest{used: used, bonus: bonus})
	l.mu.Unlock()

	if !queued {
		l.persistFailed(ctx, ErrPersistBufferFull)
	}

	l.logger.Info("bonus credits added",
		"amount", amount,
		"bonus", bonus,
	)
	l.plugins.EmitBonusAdded(ctx, amount, bonus)

	return nil
}

// ──────────────────────────────────────────────────
// Reset
// ──────────────────────────────────────────────────

// Reset returns the session to creation defaults (FREE tier, zero
// counters) and clears the persisted entries. The tier is not
// separately persisted, so it resets implicitly on rehydration too.
// This is the only operation that decreases used or bonus.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return fmt.Errorf("%w: call Start before Reset", ErrNotStarted)
	}
	l.state = session.New()
	l.cleared = true
	// Routed through the persistence queue under the same lock as the
	// state wipe, so a snapshot from an earlier operation cannot land
	// after the clear.
	queued := l.enqueuePersist(persistRequest{clear: true})
	l.mu.Unlock()

	if !queued {
		l.persistFailed(ctx, ErrPersistBufferFull)
	}

	l.logger.Info("session reset")
	l.plugins.EmitSessionReset(ctx)

	return nil
}

// ──────────────────────────────────────────────────
// Accessors
// ──────────────────────────────────────────────────

// Tier returns the current subscription tier.
func (l *Ledger) Tier() tier.Tier {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Tier
}

// Used returns the units consumed this period.
func (l *Ledger) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Used
}

// Bonus returns the purchased bonus credit balance.
func (l *Ledger) Bonus() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Bonus
}

// Limit returns the total units available this period.
func (l *Ledger) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Limit()
}

// Remaining returns the units left before the next denial.
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Remaining()
}

// Snapshot returns a copy of the session state.
func (l *Ledger) Snapshot() session.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// ──────────────────────────────────────────────────
// Persistence
// ──────────────────────────────────────────────────

// rehydrate loads the persisted counters, if any. Absent keys mean a
// fresh session; unreadable backends mean degraded operation; values
// that are present but not valid non-negative integers are corrupt and
// rejected at this boundary.
func (l *Ledger) rehydrate(ctx context.Context) error {
	used, ok, err := l.loadCounter(ctx, store.KeyCreditsUsed)
	if err != nil {
		return err
	}
	bonus, okBonus, err := l.loadCounter(ctx, store.KeyExtraCredits)
	if err != nil {
		return err
	}

	if !ok && !okBonus {
		return nil
	}

	l.mu.Lock()
	l.state.Used = used
	l.state.Bonus = bonus
	l.mu.Unlock()

	l.plugins.EmitStateRestored(ctx, used, bonus)
	l.logger.Info("state restored",
		"used", used,
		"bonus", bonus,
	)

	return nil
}

// loadCounter reads one persisted counter. The boolean reports whether
// the key was present.
func (l *Ledger) loadCounter(ctx context.Context, key string) (int, bool, error) {
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return 0, false, nil
		}
		l.logger.Warn("store unreadable, starting with defaults",
			"key", key,
			"error", err,
		)
		return 0, false, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("%w: key %s holds %q", ErrCorruptState, key, raw)
	}
	return n, true, nil
}

// enqueuePersist hands a snapshot to the background worker without
// blocking the caller. Called with mu held so the queue order matches
// the mutation order. A full queue drops the snapshot and returns
// false: a later absolute write supersedes it, and Stop flushes the
// final state.
func (l *Ledger) enqueuePersist(req persistRequest) bool {
	select {
	case l.persistCh <- req:
		return true
	default:
		return false
	}
}

// persistWorker applies queued writes in order. Adapted from a batched
// flush loop; counters are tiny, so each request is applied directly.
func (l *Ledger) persistWorker(ctx context.Context) {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case req := <-l.persistCh:
					l.persist(ctx, req)
				default:
					return
				}
			}

		case req := <-l.persistCh:
			l.persist(ctx, req)
		}
	}
}

// persist applies a single request to the store. Failures are logged
// and surfaced to plugins; they never propagate to callers.
func (l *Ledger) persist(ctx context.Context, req persistRequest) {
	if req.clear {
		if err := l.store.Remove(ctx, store.KeyCreditsUsed); err != nil {
			l.persistFailed(ctx, err)
		}
		if err := l.store.Remove(ctx, store.KeyExtraCredits); err != nil {
			l.persistFailed(ctx, err)
		}
		return
	}

	if err := l.store.Set(ctx, store.KeyCreditsUsed, strconv.Itoa(req.used)); err != nil {
		l.persistFailed(ctx, err)
	}
	if err := l.store.Set(ctx, store.KeyExtraCredits, strconv.Itoa(req.bonus)); err != nil {
		l.persistFailed(ctx, err)
	}
}

func (l *Ledger) persistFailed(ctx context.Context, err error) {
	l.logger.Error("persistence write failed, in-memory state remains authoritative",
		"error", err,
	)
	l.plugins.EmitPersistFailed(ctx, err)
}
