// Package entitlement decides whether a user may download or open a
// product. The checks are pure functions of the subscription and usage
// record and never write anything back.
package entitlement

import (
	"fmt"
	"time"

	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

const (
	// TrialDailyDownloadCap applies to every trial regardless of plan.
	TrialDailyDownloadCap = 3

	// DefaultTrialMaxProducts is used when the trial plan sets no product ceiling.
	DefaultTrialMaxProducts = 10
)

const reasonNoSubscription = "no active subscription"

// CanDownload checks the trial daily cap first, then the plan's total
// download ceiling. Only trial-limited records (see
// Subscription.TrialLimited) are subject to the daily cap.
func CanDownload(sub *subscription.Subscription, rec usage.Record, now time.Time) Result {
	if sub == nil {
		return Result{Rule: RuleSubscription, Reason: reasonNoSubscription}
	}

	trial := sub.TrialLimited(now)
	if trial && rec.DailyDownloads >= TrialDailyDownloadCap {
		return Result{
			Rule:   RuleDailyCap,
			Used:   rec.DailyDownloads,
			Limit:  TrialDailyDownloadCap,
			Reason: fmt.Sprintf("daily download limit reached (%d per day during the trial)", TrialDailyDownloadCap),
		}
	}

	if sub.Plan.HasDownloadCap() && rec.TotalDownloads >= sub.Plan.MaxDownloads {
		return Result{
			Rule:   RuleTotalCap,
			Used:   rec.TotalDownloads,
			Limit:  sub.Plan.MaxDownloads,
			Reason: fmt.Sprintf("download limit of %d reached for plan %q", sub.Plan.MaxDownloads, sub.PlanID),
		}
	}

	res := Result{Allowed: true, Used: rec.TotalDownloads, Limit: -1, Remaining: -1}
	if sub.Plan.HasDownloadCap() {
		res.Rule = RuleTotalCap
		res.Limit = sub.Plan.MaxDownloads
		res.Remaining = sub.Plan.MaxDownloads - rec.TotalDownloads
	}
	if trial {
		daily := TrialDailyDownloadCap - rec.DailyDownloads
		if res.Remaining < 0 || daily < res.Remaining {
			res.Rule = RuleDailyCap
			res.Used = rec.DailyDownloads
			res.Limit = TrialDailyDownloadCap
			res.Remaining = daily
		}
	}
	return res
}

// CanAccessProduct limits trials to a number of distinct products. A product
// already opened stays available; paid subscriptions are not limited.
func CanAccessProduct(sub *subscription.Subscription, rec usage.Record, productID string, now time.Time) Result {
	if sub == nil {
		return Result{Rule: RuleSubscription, Reason: reasonNoSubscription}
	}
	if !sub.TrialLimited(now) {
		return Result{Allowed: true, Used: rec.DistinctProducts(), Limit: -1, Remaining: -1}
	}

	limit := DefaultTrialMaxProducts
	if sub.Plan.HasProductCap() {
		limit = sub.Plan.MaxProducts
	}
	used := rec.DistinctProducts()

	if !rec.HasAccessed(productID) && used >= limit {
		return Result{
			Rule:   RuleProductCap,
			Used:   used,
			Limit:  limit,
			Reason: fmt.Sprintf("trial product limit of %d reached", limit),
		}
	}
	return Result{
		Allowed:   true,
		Rule:      RuleProductCap,
		Used:      used,
		Limit:     limit,
		Remaining: max(0, limit-used),
	}
}

// RemainingDownloads is the number of downloads left today during a trial.
// ok is false when the daily cap does not apply.
func RemainingDownloads(sub *subscription.Subscription, rec usage.Record, now time.Time) (n int, ok bool) {
	if !sub.TrialLimited(now) {
		return 0, false
	}
	return max(0, TrialDailyDownloadCap-rec.DailyDownloads), true
}
