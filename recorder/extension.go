package recorder

import (
	"context"
	"log/slog"

	"github.com/clipforge/credits/entitlement"
	"github.com/clipforge/credits/id"
	"github.com/clipforge/credits/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin            = (*Extension)(nil)
	_ plugin.OnConsumeAdmitted = (*Extension)(nil)
	_ plugin.OnConsumeDenied   = (*Extension)(nil)
	_ plugin.OnWarningRaised   = (*Extension)(nil)
	_ plugin.OnTierChanged     = (*Extension)(nil)
	_ plugin.OnBonusAdded      = (*Extension)(nil)
	_ plugin.OnSessionReset    = (*Extension)(nil)
	_ plugin.OnStateRestored   = (*Extension)(nil)
	_ plugin.OnPersistFailed   = (*Extension)(nil)
)

// Extension bridges engine lifecycle events to an analytics backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger for the extension.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extension) {
		e.logger = logger
	}
}

// WithEnabledEvents sets which events to record.
// If not called, all events are recorded.
func WithEnabledEvents(events ...string) Option {
	return func(e *Extension) {
		e.enabled = make(map[string]bool)
		for _, event := range events {
			e.enabled[event] = true
		}
	}
}

// WithDisabledEvents sets which events to skip.
func WithDisabledEvents(events ...string) Option {
	return func(e *Extension) {
		if e.enabled == nil {
			e.enabled = make(map[string]bool)
			for _, event := range allEvents() {
				e.enabled[event] = true
			}
		}
		for _, event := range events {
			delete(e.enabled, event)
		}
	}
}

// New creates an Extension that records events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "recorder" }

// OnConsumeAdmitted implements plugin.OnConsumeAdmitted.
func (e *Extension) OnConsumeAdmitted(ctx context.Context, result interface{}) error {
	res, ok := result.(*entitlement.Result)
	if !ok {
		return nil
	}
	return e.record(ctx, EventCreditConsumed,
		"used", res.Used,
		"limit", res.Limit,
		"remaining", res.Remaining,
	)
}

// OnConsumeDenied implements plugin.OnConsumeDenied.
func (e *Extension) OnConsumeDenied(ctx context.Context, result interface{}) error {
	res, ok := result.(*entitlement.Result)
	if !ok {
		return nil
	}
	return e.record(ctx, EventLimitReached,
		"used", res.Used,
		"limit", res.Limit,
	)
}

// OnWarningRaised implements plugin.OnWarningRaised.
func (e *Extension) OnWarningRaised(ctx context.Context, warning string, _ interface{}) error {
	// Denials already produce limit_reached; recording the warning too
	// would double-count them.
	if warning == string(entitlement.WarningLimitReached) {
		return nil
	}
	return e.record(ctx, EventCreditWarning,
		"warning", warning,
	)
}

// OnTierChanged implements plugin.OnTierChanged.
func (e *Extension) OnTierChanged(ctx context.Context, oldTier, newTier string, usageReset bool) error {
	return e.record(ctx, EventTierChanged,
		"from", oldTier,
		"to", newTier,
		"usage_reset", usageReset,
	)
}

// OnBonusAdded implements plugin.OnBonusAdded.
func (e *Extension) OnBonusAdded(ctx context.Context, amount, newBonus int) error {
	return e.record(ctx, EventCreditsPurchased,
		"amount", amount,
		"bonus", newBonus,
	)
}

// OnSessionReset implements plugin.OnSessionReset.
func (e *Extension) OnSessionReset(ctx context.Context) error {
	return e.record(ctx, EventSessionReset)
}

// OnStateRestored implements plugin.OnStateRestored.
func (e *Extension) OnStateRestored(ctx context.Context, used, bonus int) error {
	return e.record(ctx, EventSessionRestored,
		"used", used,
		"bonus", bonus,
	)
}

// OnPersistFailed implements plugin.OnPersistFailed.
func (e *Extension) OnPersistFailed(ctx context.Context, persistErr error) error {
	return e.record(ctx, EventPersistFailed,
		"error", persistErr.Error(),
	)
}

// record builds and sends an analytics event if the event is enabled.
func (e *Extension) record(ctx context.Context, event string, kvPairs ...any) error {
	if e.enabled != nil && !e.enabled[event] {
		return nil
	}

	props := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			continue
		}
		props[key] = kvPairs[i+1]
	}
	props["event_id"] = id.NewEventID().String()

	if recErr := e.recorder.Record(ctx, event, props); recErr != nil {
		e.logger.Warn("recorder: failed to record event",
			"event", event,
			"error", recErr,
		)
	}
	return nil
}
