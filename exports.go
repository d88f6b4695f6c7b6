package digigate

import (
	"github.com/xraph/digigate/entitlement"
	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/types"
	"github.com/xraph/digigate/usage"
)

// Re-export common types for convenience so users don't have to import the
// domain packages for everyday use.

// Money is re-exported from types package.
type Money = types.Money

// Plan is re-exported from plan package.
type Plan = plan.Plan

// Subscription is re-exported from subscription package.
type Subscription = subscription.Subscription

// UsageRecord is re-exported from usage package.
type UsageRecord = usage.Record

// Result is re-exported from entitlement package.
type Result = entitlement.Result

// Re-export Money constructors
var (
	EUR  = types.EUR
	USD  = types.USD
	XOF  = types.XOF
	Zero = types.Zero
)
