package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/digigate/entitlement"
	"github.com/xraph/digigate/observability"
	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

type countingFactory struct {
	counters   map[string]*counter
	histograms map[string]*histogram
}

type counter struct{ n float64 }

func (c *counter) Inc()          { c.n++ }
func (c *counter) Add(v float64) { c.n += v }

type histogram struct{ values []float64 }

func (h *histogram) Observe(v float64) { h.values = append(h.values, v) }

func newCountingFactory() *countingFactory {
	return &countingFactory{
		counters:   make(map[string]*counter),
		histograms: make(map[string]*histogram),
	}
}

func (f *countingFactory) Counter(name string) observability.Counter {
	c := &counter{}
	f.counters[name] = c
	return c
}

func (f *countingFactory) Histogram(name string) observability.Histogram {
	h := &histogram{}
	f.histograms[name] = h
	return h
}

func TestMetricsExtensionCounts(t *testing.T) {
	ctx := context.Background()
	f := newCountingFactory()
	m := observability.NewMetricsExtension(f)

	now := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	trial := subscription.NewTrial("u1", plan.DefaultTrial(), now)
	basic, _ := plan.Default().Get("basic")
	active := subscription.NewActive("u1", basic, now)

	require.NoError(t, m.OnTrialStarted(ctx, trial))
	require.NoError(t, m.OnSubscribed(ctx, active, trial))
	require.NoError(t, m.OnSubscribed(ctx, active, nil))
	require.NoError(t, m.OnDownloadRecorded(ctx, &usage.DownloadEvent{DailyDownloads: 2}))
	require.NoError(t, m.OnDownloadDenied(ctx, "u1", entitlement.Result{Rule: entitlement.RuleDailyCap}))
	require.NoError(t, m.OnDownloadDenied(ctx, "u1", entitlement.Result{Rule: entitlement.RuleTotalCap}))
	require.NoError(t, m.OnAccessDenied(ctx, "u1", "p11", entitlement.Result{Rule: entitlement.RuleProductCap}))

	assert.Equal(t, 1.0, f.counters["digigate.trial.started"].n)
	assert.Equal(t, 2.0, f.counters["digigate.subscription.created"].n)
	assert.Equal(t, 1.0, f.counters["digigate.trial.converted"].n)
	assert.Equal(t, 1.0, f.counters["digigate.usage.downloads"].n)
	assert.Equal(t, []float64{2}, f.histograms["digigate.usage.daily_downloads"].values)
	assert.Equal(t, 2.0, f.counters["digigate.entitlement.download.denied"].n)
	assert.Equal(t, 1.0, f.counters["digigate.entitlement.daily_cap.denied"].n)
	assert.Equal(t, 1.0, f.counters["digigate.entitlement.total_cap.denied"].n)
	assert.Equal(t, 1.0, f.counters["digigate.entitlement.product.denied"].n)
}

func TestPrometheusFactory(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := observability.NewPrometheusFactory(reg)

	c := f.Counter("digigate.usage.downloads")
	c.Inc()
	c.Add(2)
	assert.Same(t, c, f.Counter("digigate.usage.downloads"))

	pc, ok := c.(prometheus.Counter)
	require.True(t, ok)
	assert.Equal(t, 3.0, testutil.ToFloat64(pc))

	f.Histogram("digigate.usage.daily_downloads").Observe(2)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.ElementsMatch(t, []string{"digigate_usage_downloads_total", "digigate_usage_daily_downloads"}, names)
}

func TestPrometheusFactoryReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	a := observability.NewPrometheusFactory(reg).Counter("digigate.trial.started")
	b := observability.NewPrometheusFactory(reg).Counter("digigate.trial.started")
	a.Inc()
	b.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.(prometheus.Counter)))
}

func TestMetricsExtensionWithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))
	require.NoError(t, m.OnUsageReset(context.Background(), "u1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsageResets.(prometheus.Counter)))
}
