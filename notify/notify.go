// Package notify bridges engine warning signals to a user-facing
// notification surface.
//
// It defines a local Sink interface so the package does not depend on
// any particular UI or messaging layer. Callers inject a SinkFunc
// adapter that bridges to their surface (modal, toast, webhook) at
// wiring time.
package notify

import (
	"context"
	"log/slog"

	"github.com/clipforge/credits/entitlement"
	"github.com/clipforge/credits/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin          = (*Extension)(nil)
	_ plugin.OnWarningRaised = (*Extension)(nil)
)

// Sink is the interface that notification surfaces must implement.
// The result carries the counters a surface needs to render the
// message ("14 of 15 used").
type Sink interface {
	Show(ctx context.Context, warning entitlement.Warning, result *entitlement.Result) error
}

// SinkFunc is an adapter to use a plain function as a Sink.
type SinkFunc func(ctx context.Context, warning entitlement.Warning, result *entitlement.Result) error

// Show implements Sink.
func (f SinkFunc) Show(ctx context.Context, warning entitlement.Warning, result *entitlement.Result) error {
	return f(ctx, warning, result)
}

// SlogSink writes warnings to a structured logger. Useful as a default
// surface in headless deployments.
func SlogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(_ context.Context, warning entitlement.Warning, result *entitlement.Result) error {
		logger.Warn("credit warning",
			"warning", string(warning),
			"used", result.Used,
			"limit", result.Limit,
			"remaining", result.Remaining,
		)
		return nil
	})
}

// Extension forwards warning hooks to a Sink.
type Extension struct {
	sink   Sink
	logger *slog.Logger
}

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger for the extension.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extension) {
		e.logger = logger
	}
}

// New creates an Extension that surfaces warnings through the provided Sink.
func New(s Sink, opts ...Option) *Extension {
	e := &Extension{
		sink:   s,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "notify" }

// OnWarningRaised implements plugin.OnWarningRaised.
//
// The engine fires this hook after the consumption's own effects, so a
// surface never shows a warning for an action that did not happen.
func (e *Extension) OnWarningRaised(ctx context.Context, warning string, result interface{}) error {
	res, ok := result.(*entitlement.Result)
	if !ok {
		return nil
	}

	if err := e.sink.Show(ctx, entitlement.Warning(warning), res); err != nil {
		e.logger.Warn("notify: failed to surface warning",
			"warning", warning,
			"error", err,
		)
	}
	return nil
}
