// Package audithook bridges digigate lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import an
// audit library directly. Callers inject a RecorderFunc adapter that bridges
// to their backend at wiring time.
package audithook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/digigate/entitlement"
	"github.com/xraph/digigate/plugin"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                  = (*Extension)(nil)
	_ plugin.OnTrialStarted          = (*Extension)(nil)
	_ plugin.OnTrialExpired          = (*Extension)(nil)
	_ plugin.OnSubscribed            = (*Extension)(nil)
	_ plugin.OnSubscriptionCancelled = (*Extension)(nil)
	_ plugin.OnSubscriptionReset     = (*Extension)(nil)
	_ plugin.OnDownloadRecorded      = (*Extension)(nil)
	_ plugin.OnProductAccessed       = (*Extension)(nil)
	_ plugin.OnDailyReset            = (*Extension)(nil)
	_ plugin.OnUsageReset            = (*Extension)(nil)
	_ plugin.OnDownloadDenied        = (*Extension)(nil)
	_ plugin.OnAccessDenied          = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges digigate lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
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
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Subscription lifecycle hooks
// ──────────────────────────────────────────────────

// OnTrialStarted implements plugin.OnTrialStarted.
func (e *Extension) OnTrialStarted(ctx context.Context, sub *subscription.Subscription) error {
	kv := []any{"user_id", sub.UserID, "plan_id", sub.PlanID}
	if end, ok := sub.TrialEndDate(); ok {
		kv = append(kv, "trial_ends_at", end)
	}
	return e.record(ctx, ActionTrialStarted, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, sub.ID.String(), CategorySubscription, nil,
		kv...,
	)
}

// OnTrialExpired implements plugin.OnTrialExpired.
func (e *Extension) OnTrialExpired(ctx context.Context, sub *subscription.Subscription) error {
	return e.record(ctx, ActionTrialExpired, SeverityWarning, OutcomeSuccess,
		ResourceSubscription, sub.ID.String(), CategorySubscription, nil,
		"user_id", sub.UserID,
	)
}

// OnSubscribed implements plugin.OnSubscribed. Leaving a trial, live or
// lapsed, is audited as a conversion.
func (e *Extension) OnSubscribed(ctx context.Context, sub, previous *subscription.Subscription) error {
	action := ActionSubscriptionCreated
	kv := []any{"user_id", sub.UserID, "plan_id", sub.PlanID}
	if previous != nil {
		kv = append(kv, "previous_plan_id", previous.PlanID, "previous_status", string(previous.Status()))
		if st := previous.Status(); st == subscription.StatusTrial || st == subscription.StatusExpired {
			action = ActionSubscriptionConverted
		}
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, sub.ID.String(), CategorySubscription, nil,
		kv...,
	)
}

// OnSubscriptionCancelled implements plugin.OnSubscriptionCancelled.
func (e *Extension) OnSubscriptionCancelled(ctx context.Context, sub *subscription.Subscription) error {
	return e.record(ctx, ActionSubscriptionCancelled, SeverityInfo, OutcomeSuccess,
		ResourceSubscription, sub.ID.String(), CategorySubscription, nil,
		"user_id", sub.UserID,
		"plan_id", sub.PlanID,
	)
}

// OnSubscriptionReset implements plugin.OnSubscriptionReset.
func (e *Extension) OnSubscriptionReset(ctx context.Context, userID string) error {
	return e.record(ctx, ActionSubscriptionReset, SeverityWarning, OutcomeSuccess,
		ResourceSubscription, userID, CategorySubscription, nil,
		"user_id", userID,
	)
}

// ──────────────────────────────────────────────────
// Usage hooks
// ──────────────────────────────────────────────────

// OnDownloadRecorded implements plugin.OnDownloadRecorded.
func (e *Extension) OnDownloadRecorded(ctx context.Context, ev *usage.DownloadEvent) error {
	return e.record(ctx, ActionDownloadRecorded, SeverityInfo, OutcomeSuccess,
		ResourceProduct, ev.ProductID, CategoryUsage, nil,
		"event_id", ev.ID.String(),
		"user_id", ev.UserID,
		"plan_id", ev.PlanID,
		"daily_downloads", ev.DailyDownloads,
		"total_downloads", ev.TotalDownloads,
		"first_access", ev.FirstAccess,
	)
}

// OnProductAccessed implements plugin.OnProductAccessed.
func (e *Extension) OnProductAccessed(ctx context.Context, userID, productID string) error {
	return e.record(ctx, ActionProductAccessed, SeverityInfo, OutcomeSuccess,
		ResourceProduct, productID, CategoryUsage, nil,
		"user_id", userID,
	)
}

// OnDailyReset implements plugin.OnDailyReset.
func (e *Extension) OnDailyReset(ctx context.Context, userID string, previous usage.Record) error {
	return e.record(ctx, ActionDailyReset, SeverityInfo, OutcomeSuccess,
		ResourceUsage, userID, CategoryUsage, nil,
		"user_id", userID,
		"previous_date", previous.LastResetDate,
		"previous_daily_downloads", previous.DailyDownloads,
	)
}

// OnUsageReset implements plugin.OnUsageReset.
func (e *Extension) OnUsageReset(ctx context.Context, userID string) error {
	return e.record(ctx, ActionUsageReset, SeverityWarning, OutcomeSuccess,
		ResourceUsage, userID, CategoryUsage, nil,
		"user_id", userID,
	)
}

// ──────────────────────────────────────────────────
// Entitlement hooks
// ──────────────────────────────────────────────────

// OnDownloadDenied implements plugin.OnDownloadDenied.
func (e *Extension) OnDownloadDenied(ctx context.Context, userID string, res entitlement.Result) error {
	return e.record(ctx, ActionDownloadDenied, SeverityWarning, OutcomeFailure,
		ResourceEntitlement, string(res.Rule), CategoryAccess, denial(res),
		"user_id", userID,
		"used", res.Used,
		"limit", res.Limit,
	)
}

// OnAccessDenied implements plugin.OnAccessDenied.
func (e *Extension) OnAccessDenied(ctx context.Context, userID, productID string, res entitlement.Result) error {
	return e.record(ctx, ActionAccessDenied, SeverityWarning, OutcomeFailure,
		ResourceProduct, productID, CategoryAccess, denial(res),
		"user_id", userID,
		"rule", string(res.Rule),
		"used", res.Used,
		"limit", res.Limit,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func denial(res entitlement.Result) error {
	if res.Reason == "" {
		return nil
	}
	return errors.New(res.Reason)
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
