// Package observability provides a metrics extension for the credits
// engine that records lifecycle event counts via a MetricFactory.
package observability

import (
	"context"

	"github.com/clipforge/credits/entitlement"
	"github.com/clipforge/credits/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin            = (*MetricsExtension)(nil)
	_ plugin.OnStateRestored   = (*MetricsExtension)(nil)
	_ plugin.OnConsumeAdmitted = (*MetricsExtension)(nil)
	_ plugin.OnConsumeDenied   = (*MetricsExtension)(nil)
	_ plugin.OnWarningRaised   = (*MetricsExtension)(nil)
	_ plugin.OnTierChanged     = (*MetricsExtension)(nil)
	_ plugin.OnBonusAdded      = (*MetricsExtension)(nil)
	_ plugin.OnSessionReset    = (*MetricsExtension)(nil)
	_ plugin.OnPersistFailed   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records engine lifecycle metrics.
// Register it as an engine plugin to automatically track quota metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Consumption metrics
	ConsumeAdmitted  Counter
	ConsumeDenied    Counter
	CreditsRemaining Histogram

	// Warning metrics
	WarningsRaised Counter

	// Session metrics
	TierChanges   Counter
	UsageResets   Counter
	BonusAdded    Counter
	BonusAmount   Histogram
	SessionResets Counter
	StateRestored Counter

	// Error metrics
	PersistFailures Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Consumption metrics
		ConsumeAdmitted:  factory.Counter("credits.consume.admitted"),
		ConsumeDenied:    factory.Counter("credits.consume.denied"),
		CreditsRemaining: factory.Histogram("credits.consume.remaining"),

		// Warning metrics
		WarningsRaised: factory.Counter("credits.warnings.raised"),

		// Session metrics
		TierChanges:   factory.Counter("credits.tier.changes"),
		UsageResets:   factory.Counter("credits.tier.usage_resets"),
		BonusAdded:    factory.Counter("credits.bonus.purchases"),
		BonusAmount:   factory.Histogram("credits.bonus.amount"),
		SessionResets: factory.Counter("credits.session.resets"),
		StateRestored: factory.Counter("credits.session.restored"),

		// Error metrics
		PersistFailures: factory.Counter("credits.store.persist_failures"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnStateRestored implements plugin.OnStateRestored.
func (m *MetricsExtension) OnStateRestored(_ context.Context, _, _ int) error {
	m.StateRestored.Inc()
	return nil
}

// OnConsumeAdmitted implements plugin.OnConsumeAdmitted.
func (m *MetricsExtension) OnConsumeAdmitted(_ context.Context, result interface{}) error {
	m.ConsumeAdmitted.Inc()
	if r, ok := result.(*entitlement.Result); ok {
		m.CreditsRemaining.Observe(float64(r.Remaining))
	}
	return nil
}

// OnConsumeDenied implements plugin.OnConsumeDenied.
func (m *MetricsExtension) OnConsumeDenied(_ context.Context, _ interface{}) error {
	m.ConsumeDenied.Inc()
	return nil
}

// OnWarningRaised implements plugin.OnWarningRaised.
func (m *MetricsExtension) OnWarningRaised(_ context.Context, _ string, _ interface{}) error {
	m.WarningsRaised.Inc()
	return nil
}

// OnTierChanged implements plugin.OnTierChanged.
func (m *MetricsExtension) OnTierChanged(_ context.Context, _, _ string, usageReset bool) error {
	m.TierChanges.Inc()
	if usageReset {
		m.UsageResets.Inc()
	}
	return nil
}

// OnBonusAdded implements plugin.OnBonusAdded.
func (m *MetricsExtension) OnBonusAdded(_ context.Context, amount, _ int) error {
	m.BonusAdded.Inc()
	m.BonusAmount.Observe(float64(amount))
	return nil
}

// OnSessionReset implements plugin.OnSessionReset.
func (m *MetricsExtension) OnSessionReset(_ context.Context) error {
	m.SessionResets.Inc()
	return nil
}

// OnPersistFailed implements plugin.OnPersistFailed.
func (m *MetricsExtension) OnPersistFailed(_ context.Context, _ error) error {
	m.PersistFailures.Inc()
	return nil
}
