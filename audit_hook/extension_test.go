package audithook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audithook "github.com/xraph/digigate/audit_hook"
	"github.com/xraph/digigate/entitlement"
	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

var t0 = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type sink struct {
	events []*audithook.AuditEvent
}

func (s *sink) Record(_ context.Context, ev *audithook.AuditEvent) error {
	s.events = append(s.events, ev)
	return nil
}

func (s *sink) actions() []string {
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Action)
	}
	return out
}

func premium(t *testing.T) *plan.Plan {
	t.Helper()
	p, ok := plan.Default().Get("premium")
	require.True(t, ok)
	return p
}

func TestSubscriptionEvents(t *testing.T) {
	ctx := context.Background()
	rec := &sink{}
	ext := audithook.New(rec)

	trial := subscription.NewTrial("u1", plan.DefaultTrial(), t0)
	require.NoError(t, ext.OnTrialStarted(ctx, trial))

	paid := subscription.NewActive("u1", premium(t), t0.Add(time.Hour))
	require.NoError(t, ext.OnSubscribed(ctx, paid, trial))
	require.NoError(t, ext.OnSubscribed(ctx, paid, nil))
	require.NoError(t, ext.OnSubscriptionCancelled(ctx, paid))
	require.NoError(t, ext.OnSubscriptionReset(ctx, "u1"))

	assert.Equal(t, []string{
		audithook.ActionTrialStarted,
		audithook.ActionSubscriptionConverted,
		audithook.ActionSubscriptionCreated,
		audithook.ActionSubscriptionCancelled,
		audithook.ActionSubscriptionReset,
	}, rec.actions())

	started := rec.events[0]
	assert.Equal(t, trial.ID.String(), started.ResourceID)
	assert.Equal(t, t0.Add(subscription.TrialLength), started.Metadata["trial_ends_at"])

	converted := rec.events[1]
	assert.Equal(t, "trial", converted.Metadata["previous_plan_id"])
	assert.Equal(t, "premium", converted.Metadata["plan_id"])
}

func TestUsageEvents(t *testing.T) {
	ctx := context.Background()
	rec := &sink{}
	ext := audithook.New(rec)

	r := usage.New("2026-05-04").WithDownload("p1")
	ev := usage.NewDownloadEvent("u1", "trial", "p1", r, true, t0)
	require.NoError(t, ext.OnDownloadRecorded(ctx, ev))
	require.NoError(t, ext.OnProductAccessed(ctx, "u1", "p2"))
	require.NoError(t, ext.OnDailyReset(ctx, "u1", r))
	require.NoError(t, ext.OnUsageReset(ctx, "u1"))

	require.Len(t, rec.events, 4)
	dl := rec.events[0]
	assert.Equal(t, audithook.ActionDownloadRecorded, dl.Action)
	assert.Equal(t, "p1", dl.ResourceID)
	assert.Equal(t, 1, dl.Metadata["daily_downloads"])
	assert.Equal(t, true, dl.Metadata["first_access"])

	reset := rec.events[2]
	assert.Equal(t, "2026-05-04", reset.Metadata["previous_date"])
}

func TestDeniedEvents(t *testing.T) {
	ctx := context.Background()
	rec := &sink{}
	ext := audithook.New(rec)

	res := entitlement.Result{Rule: entitlement.RuleDailyCap, Used: 3, Limit: 3, Reason: "daily limit reached"}
	require.NoError(t, ext.OnDownloadDenied(ctx, "u1", res))
	require.NoError(t, ext.OnAccessDenied(ctx, "u1", "p9", entitlement.Result{Rule: entitlement.RuleProductCap}))

	require.Len(t, rec.events, 2)
	assert.Equal(t, audithook.OutcomeFailure, rec.events[0].Outcome)
	assert.Equal(t, "daily limit reached", rec.events[0].Reason)
	assert.Equal(t, string(entitlement.RuleDailyCap), rec.events[0].ResourceID)
	assert.Empty(t, rec.events[1].Reason)
	assert.Equal(t, "p9", rec.events[1].ResourceID)
}

func TestActionFilters(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		opt  audithook.Option
		want []string
	}{
		{
			name: "enabled only",
			opt:  audithook.WithEnabledActions(audithook.ActionUsageReset),
			want: []string{audithook.ActionUsageReset},
		},
		{
			name: "disabled",
			opt:  audithook.WithDisabledActions(audithook.ActionUsageReset),
			want: []string{audithook.ActionSubscriptionReset},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &sink{}
			ext := audithook.New(rec, tt.opt)
			require.NoError(t, ext.OnUsageReset(ctx, "u1"))
			require.NoError(t, ext.OnSubscriptionReset(ctx, "u1"))
			assert.Equal(t, tt.want, rec.actions())
		})
	}
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	calls := 0
	ext := audithook.New(
		audithook.RecorderFunc(func(context.Context, *audithook.AuditEvent) error {
			calls++
			return errors.New("backend down")
		}),
		audithook.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	assert.NoError(t, ext.OnUsageReset(context.Background(), "u1"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "audit-hook", ext.Name())
}
