// Package plugin provides the hook system for digigate. Plugins implement
// any subset of the hook interfaces below and are dispatched by a Registry.
package plugin

import (
	"context"

	"github.com/xraph/digigate/entitlement"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. engine is the *digigate.Engine.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Subscription hooks
// ──────────────────────────────────────────────────

// OnTrialStarted is called after a new trial has been persisted.
type OnTrialStarted interface {
	Plugin
	OnTrialStarted(ctx context.Context, sub *subscription.Subscription) error
}

// OnTrialExpired is called when a lapsed trial is turned off.
type OnTrialExpired interface {
	Plugin
	OnTrialExpired(ctx context.Context, sub *subscription.Subscription) error
}

// OnSubscribed is called after a plan purchase. previous is nil when the
// user had no record.
type OnSubscribed interface {
	Plugin
	OnSubscribed(ctx context.Context, sub, previous *subscription.Subscription) error
}

// OnSubscriptionCancelled is called after a cancellation.
type OnSubscriptionCancelled interface {
	Plugin
	OnSubscriptionCancelled(ctx context.Context, sub *subscription.Subscription) error
}

// OnSubscriptionReset is called after a user's subscription was deleted.
type OnSubscriptionReset interface {
	Plugin
	OnSubscriptionReset(ctx context.Context, userID string) error
}

// ──────────────────────────────────────────────────
// Usage hooks
// ──────────────────────────────────────────────────

// OnDownloadRecorded is called after a download was counted.
type OnDownloadRecorded interface {
	Plugin
	OnDownloadRecorded(ctx context.Context, event *usage.DownloadEvent) error
}

// OnProductAccessed is called the first time a user opens a product.
type OnProductAccessed interface {
	Plugin
	OnProductAccessed(ctx context.Context, userID, productID string) error
}

// OnDailyReset is called when the daily counter rolled over. previous is
// the record as it was before the reset.
type OnDailyReset interface {
	Plugin
	OnDailyReset(ctx context.Context, userID string, previous usage.Record) error
}

// OnUsageReset is called after an explicit usage reset.
type OnUsageReset interface {
	Plugin
	OnUsageReset(ctx context.Context, userID string) error
}

// ──────────────────────────────────────────────────
// Entitlement hooks
// ──────────────────────────────────────────────────

// OnDownloadDenied is called when a download check fails.
type OnDownloadDenied interface {
	Plugin
	OnDownloadDenied(ctx context.Context, userID string, result entitlement.Result) error
}

// OnAccessDenied is called when a product access check fails.
type OnAccessDenied interface {
	Plugin
	OnAccessDenied(ctx context.Context, userID, productID string, result entitlement.Result) error
}
