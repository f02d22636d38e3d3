// Package plugin provides an extensible plugin system for Credits.
// Plugins can hook into lifecycle events to extend functionality:
// notification sinks, analytics recorders, metrics, audit trails.
package plugin

import "context"

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// OnStateRestored is called after counters are rehydrated from the store.
type OnStateRestored interface {
	Plugin
	OnStateRestored(ctx context.Context, used, bonus int) error
}

// ──────────────────────────────────────────────────
// Consumption hooks
// ──────────────────────────────────────────────────

// OnConsumeAdmitted is called after a consumption is admitted and the
// state mutation has been applied. The result parameter is an
// *entitlement.Result.
type OnConsumeAdmitted interface {
	Plugin
	OnConsumeAdmitted(ctx context.Context, result interface{}) error
}

// OnConsumeDenied is called when a consumption is refused. The state is
// unchanged. The result parameter is an *entitlement.Result.
type OnConsumeDenied interface {
	Plugin
	OnConsumeDenied(ctx context.Context, result interface{}) error
}

// OnWarningRaised is called after the admit/deny hooks when a decision
// carries a warning. warning is the string form of entitlement.Warning.
type OnWarningRaised interface {
	Plugin
	OnWarningRaised(ctx context.Context, warning string, result interface{}) error
}

// ──────────────────────────────────────────────────
// Account lifecycle hooks
// ──────────────────────────────────────────────────

// OnTierChanged is called after a tier transition. usageReset reports
// whether the transition zeroed the usage counter.
type OnTierChanged interface {
	Plugin
	OnTierChanged(ctx context.Context, oldTier, newTier string, usageReset bool) error
}

// OnBonusAdded is called after a bonus credit purchase is applied.
type OnBonusAdded interface {
	Plugin
	OnBonusAdded(ctx context.Context, amount, newBonus int) error
}

// OnSessionReset is called after the session is reset to defaults.
type OnSessionReset interface {
	Plugin
	OnSessionReset(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Persistence hooks
// ──────────────────────────────────────────────────

// OnPersistFailed is called when a best-effort persistence write fails.
// The engine has already logged the failure; this hook exists for
// recording and alerting, not recovery.
type OnPersistFailed interface {
	Plugin
	OnPersistFailed(ctx context.Context, err error) error
}
