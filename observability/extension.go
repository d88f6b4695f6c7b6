// Package observability provides a metrics extension for digigate that
// records lifecycle event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/digigate/entitlement"
	"github.com/xraph/digigate/plugin"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                  = (*MetricsExtension)(nil)
	_ plugin.OnInit                  = (*MetricsExtension)(nil)
	_ plugin.OnTrialStarted          = (*MetricsExtension)(nil)
	_ plugin.OnTrialExpired          = (*MetricsExtension)(nil)
	_ plugin.OnSubscribed            = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionCancelled = (*MetricsExtension)(nil)
	_ plugin.OnSubscriptionReset     = (*MetricsExtension)(nil)
	_ plugin.OnDownloadRecorded      = (*MetricsExtension)(nil)
	_ plugin.OnProductAccessed       = (*MetricsExtension)(nil)
	_ plugin.OnDailyReset            = (*MetricsExtension)(nil)
	_ plugin.OnUsageReset            = (*MetricsExtension)(nil)
	_ plugin.OnDownloadDenied        = (*MetricsExtension)(nil)
	_ plugin.OnAccessDenied          = (*MetricsExtension)(nil)
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

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a digigate plugin to track trials, purchases and downloads.
type MetricsExtension struct {
	factory MetricFactory

	// Subscription metrics
	TrialStarted          Counter
	TrialExpired          Counter
	TrialConverted        Counter
	Subscribed            Counter
	SubscriptionCancelled Counter
	SubscriptionReset     Counter

	// Usage metrics
	DownloadsRecorded Counter
	ProductsAccessed  Counter
	DailyResets       Counter
	UsageResets       Counter
	DailyDownloads    Histogram

	// Entitlement metrics
	DownloadDenied      Counter
	DailyCapDenied      Counter
	TotalCapDenied      Counter
	NoSubscriptionDeny  Counter
	ProductAccessDenied Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Subscription metrics
		TrialStarted:          factory.Counter("digigate.trial.started"),
		TrialExpired:          factory.Counter("digigate.trial.expired"),
		TrialConverted:        factory.Counter("digigate.trial.converted"),
		Subscribed:            factory.Counter("digigate.subscription.created"),
		SubscriptionCancelled: factory.Counter("digigate.subscription.cancelled"),
		SubscriptionReset:     factory.Counter("digigate.subscription.reset"),

		// Usage metrics
		DownloadsRecorded: factory.Counter("digigate.usage.downloads"),
		ProductsAccessed:  factory.Counter("digigate.usage.products.accessed"),
		DailyResets:       factory.Counter("digigate.usage.daily_resets"),
		UsageResets:       factory.Counter("digigate.usage.resets"),
		DailyDownloads:    factory.Histogram("digigate.usage.daily_downloads"),

		// Entitlement metrics
		DownloadDenied:      factory.Counter("digigate.entitlement.download.denied"),
		DailyCapDenied:      factory.Counter("digigate.entitlement.daily_cap.denied"),
		TotalCapDenied:      factory.Counter("digigate.entitlement.total_cap.denied"),
		NoSubscriptionDeny:  factory.Counter("digigate.entitlement.no_subscription.denied"),
		ProductAccessDenied: factory.Counter("digigate.entitlement.product.denied"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnTrialStarted implements plugin.OnTrialStarted.
func (m *MetricsExtension) OnTrialStarted(_ context.Context, _ *subscription.Subscription) error {
	m.TrialStarted.Inc()
	return nil
}

// OnTrialExpired implements plugin.OnTrialExpired.
func (m *MetricsExtension) OnTrialExpired(_ context.Context, _ *subscription.Subscription) error {
	m.TrialExpired.Inc()
	return nil
}

// OnSubscribed implements plugin.OnSubscribed. A purchase made while on
// trial also counts as a conversion.
func (m *MetricsExtension) OnSubscribed(_ context.Context, _, previous *subscription.Subscription) error {
	m.Subscribed.Inc()
	if previous.IsTrialActive() || previous.Status() == subscription.StatusExpired {
		m.TrialConverted.Inc()
	}
	return nil
}

// OnSubscriptionCancelled implements plugin.OnSubscriptionCancelled.
func (m *MetricsExtension) OnSubscriptionCancelled(_ context.Context, _ *subscription.Subscription) error {
	m.SubscriptionCancelled.Inc()
	return nil
}

// OnSubscriptionReset implements plugin.OnSubscriptionReset.
func (m *MetricsExtension) OnSubscriptionReset(_ context.Context, _ string) error {
	m.SubscriptionReset.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Usage lifecycle hooks
// ──────────────────────────────────────────────────

// OnDownloadRecorded implements plugin.OnDownloadRecorded.
func (m *MetricsExtension) OnDownloadRecorded(_ context.Context, ev *usage.DownloadEvent) error {
	m.DownloadsRecorded.Inc()
	m.DailyDownloads.Observe(float64(ev.DailyDownloads))
	return nil
}

// OnProductAccessed implements plugin.OnProductAccessed.
func (m *MetricsExtension) OnProductAccessed(_ context.Context, _, _ string) error {
	m.ProductsAccessed.Inc()
	return nil
}

// OnDailyReset implements plugin.OnDailyReset.
func (m *MetricsExtension) OnDailyReset(_ context.Context, _ string, _ usage.Record) error {
	m.DailyResets.Inc()
	return nil
}

// OnUsageReset implements plugin.OnUsageReset.
func (m *MetricsExtension) OnUsageReset(_ context.Context, _ string) error {
	m.UsageResets.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Entitlement lifecycle hooks
// ──────────────────────────────────────────────────

// OnDownloadDenied implements plugin.OnDownloadDenied.
func (m *MetricsExtension) OnDownloadDenied(_ context.Context, _ string, res entitlement.Result) error {
	m.DownloadDenied.Inc()
	switch res.Rule {
	case entitlement.RuleDailyCap:
		m.DailyCapDenied.Inc()
	case entitlement.RuleTotalCap:
		m.TotalCapDenied.Inc()
	case entitlement.RuleSubscription:
		m.NoSubscriptionDeny.Inc()
	}
	return nil
}

// OnAccessDenied implements plugin.OnAccessDenied.
func (m *MetricsExtension) OnAccessDenied(_ context.Context, _, _ string, res entitlement.Result) error {
	m.ProductAccessDenied.Inc()
	if res.Rule == entitlement.RuleSubscription {
		m.NoSubscriptionDeny.Inc()
	}
	return nil
}
