// Package posthog adapts the PostHog analytics SDK to the recorder
// interface.
package posthog

import (
	"context"
	"fmt"

	posthoggo "github.com/posthog/posthog-go"

	"github.com/clipforge/credits/recorder"
)

// DefaultEndpoint is the PostHog cloud ingestion endpoint.
const DefaultEndpoint = "https://app.posthog.com"

// Compile-time interface check.
var _ recorder.Recorder = (*Recorder)(nil)

// Config configures the PostHog adapter.
type Config struct {
	// APIKey is the PostHog project API key. Required.
	APIKey string

	// Endpoint overrides the ingestion endpoint for self-hosted
	// deployments. Defaults to DefaultEndpoint.
	Endpoint string

	// DistinctID identifies the session in PostHog. Defaults to
	// "local-session" for anonymous single-user deployments.
	DistinctID string
}

// Recorder sends events to PostHog. Events are batched by the
// underlying SDK client; call Close to flush pending events.
type Recorder struct {
	client     posthoggo.Client
	distinctID string
}

// New creates a PostHog-backed Recorder.
func New(cfg Config) (*Recorder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("posthog: API key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.DistinctID == "" {
		cfg.DistinctID = "local-session"
	}

	client, err := posthoggo.NewWithConfig(cfg.APIKey, posthoggo.Config{
		Endpoint: cfg.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("posthog: create client: %w", err)
	}

	return &Recorder{
		client:     client,
		distinctID: cfg.DistinctID,
	}, nil
}

// Record implements recorder.Recorder.
func (r *Recorder) Record(_ context.Context, event string, props map[string]any) error {
	properties := posthoggo.NewProperties()
	for k, v := range props {
		properties.Set(k, v)
	}

	return r.client.Enqueue(posthoggo.Capture{
		DistinctId: r.distinctID,
		Event:      event,
		Properties: properties,
	})
}

// Close flushes pending events and shuts down the client.
func (r *Recorder) Close() error {
	return r.client.Close()
}
