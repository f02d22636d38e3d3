// Package recorder bridges engine lifecycle events to an analytics
// backend.
//
// It defines a local Recorder interface so the package does not import
// any analytics SDK directly. The posthog subpackage provides a
// concrete adapter; callers can also inject a RecorderFunc for custom
// backends.
package recorder

import (
	"context"
	"log/slog"
)

// Recorder is the interface that analytics backends must implement.
type Recorder interface {
	Record(ctx context.Context, event string, props map[string]any) error
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event string, props map[string]any) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event string, props map[string]any) error {
	return f(ctx, event, props)
}

// SlogRecorder writes events to a structured logger. Useful in
// development, where no analytics backend is configured.
func SlogRecorder(logger *slog.Logger) Recorder {
	return RecorderFunc(func(_ context.Context, event string, props map[string]any) error {
		logger.Info("analytics event",
			"event", event,
			"props", props,
		)
		return nil
	})
}
