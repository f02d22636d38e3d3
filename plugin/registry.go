package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient
// dispatch. It uses type-cached discovery so emitting an event walks
// only the plugins that implement the matching hook.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit            []OnInit
	onShutdown        []OnShutdown
	onStateRestored   []OnStateRestored
	onConsumeAdmitted []OnConsumeAdmitted
	onConsumeDenied   []OnConsumeDenied
	onWarningRaised   []OnWarningRaised
	onTierChanged     []OnTierChanged
	onBonusAdded      []OnBonusAdded
	onSessionReset    []OnSessionReset
	onPersistFailed   []OnPersistFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnStateRestored); ok {
		r.onStateRestored = append(r.onStateRestored, v)
	}
	if v, ok := p.(OnConsumeAdmitted); ok {
		r.onConsumeAdmitted = append(r.onConsumeAdmitted, v)
	}
	if v, ok := p.(OnConsumeDenied); ok {
		r.onConsumeDenied = append(r.onConsumeDenied, v)
	}
	if v, ok := p.(OnWarningRaised); ok {
		r.onWarningRaised = append(r.onWarningRaised, v)
	}
	if v, ok := p.(OnTierChanged); ok {
		r.onTierChanged = append(r.onTierChanged, v)
	}
	if v, ok := p.(OnBonusAdded); ok {
		r.onBonusAdded = append(r.onBonusAdded, v)
	}
	if v, ok := p.(OnSessionReset); ok {
		r.onSessionReset = append(r.onSessionReset, v)
	}
	if v, ok := p.(OnPersistFailed); ok {
		r.onPersistFailed = append(r.onPersistFailed, v)
	}

	r.logger.Info("plugin registered", "name", p.Name())

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitStateRestored emits a state restored event.
func (r *Registry) EmitStateRestored(ctx context.Context, used, bonus int) {
	r.mu.RLock()
	plugins := r.onStateRestored
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStateRestored(ctx, used, bonus)
		}); err != nil {
			r.logger.Warn("plugin OnStateRestored failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitConsumeAdmitted emits a consumption admitted event.
func (r *Registry) EmitConsumeAdmitted(ctx context.Context, result interface{}) {
	r.mu.RLock()
	plugins := r.onConsumeAdmitted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnConsumeAdmitted(ctx, result)
		}); err != nil {
			r.logger.Warn("plugin OnConsumeAdmitted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitConsumeDenied emits a consumption denied event.
func (r *Registry) EmitConsumeDenied(ctx context.Context, result interface{}) {
	r.mu.RLock()
	plugins := r.onConsumeDenied
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnConsumeDenied(ctx, result)
		}); err != nil {
			r.logger.Warn("plugin OnConsumeDenied failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitWarningRaised emits a warning event. The engine guarantees this
// fires after the matching admit/deny emission.
func (r *Registry) EmitWarningRaised(ctx context.Context, warning string, result interface{}) {
	r.mu.RLock()
	plugins := r.onWarningRaised
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWarningRaised(ctx, warning, result)
		}); err != nil {
			r.logger.Warn("plugin OnWarningRaised failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTierChanged emits a tier transition event.
func (r *Registry) EmitTierChanged(ctx context.Context, oldTier, newTier string, usageReset bool) {
	r.mu.RLock()
	plugins := r.onTierChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTierChanged(ctx, oldTier, newTier, usageReset)
		}); err != nil {
			r.logger.Warn("plugin OnTierChanged failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBonusAdded emits a bonus purchase event.
func (r *Registry) EmitBonusAdded(ctx context.Context, amount, newBonus int) {
	r.mu.RLock()
	plugins := r.onBonusAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBonusAdded(ctx, amount, newBonus)
		}); err != nil {
			r.logger.Warn("plugin OnBonusAdded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionReset emits a session reset event.
func (r *Registry) EmitSessionReset(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onSessionReset
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionReset(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnSessionReset failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPersistFailed emits a persistence failure event.
func (r *Registry) EmitPersistFailed(ctx context.Context, persistErr error) {
	r.mu.RLock()
	plugins := r.onPersistFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPersistFailed(ctx, persistErr)
		}); err != nil {
			r.logger.Warn("plugin OnPersistFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins must never block the decision pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
