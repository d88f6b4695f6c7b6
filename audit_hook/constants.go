package audithook

// Action constants for audit events.
const (
	// Trial actions
	ActionTrialStarted = "trial.started"
	ActionTrialExpired = "trial.expired"

	// Subscription actions
	ActionSubscriptionCreated   = "subscription.created"
	ActionSubscriptionConverted = "subscription.converted"
	ActionSubscriptionCancelled = "subscription.cancelled"
	ActionSubscriptionReset     = "subscription.reset"

	// Usage actions
	ActionDownloadRecorded = "usage.download_recorded"
	ActionProductAccessed  = "usage.product_accessed"
	ActionDailyReset       = "usage.daily_reset"
	ActionUsageReset       = "usage.reset"

	// Entitlement actions
	ActionDownloadDenied = "entitlement.download_denied"
	ActionAccessDenied   = "entitlement.access_denied"
)

// Resource constants for audit events.
const (
	ResourceSubscription = "subscription"
	ResourceUsage        = "usage"
	ResourceProduct      = "product"
	ResourceEntitlement  = "entitlement"
)

// Category constants for audit events.
const (
	CategorySubscription = "subscription"
	CategoryUsage        = "usage"
	CategoryAccess       = "access"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
