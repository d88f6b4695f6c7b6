package digigate

import (
	"context"

	"github.com/xraph/digigate/entitlement"
)

// Session is one user's view of the engine.
type Session struct {
	engine *Engine
	userID string
	subs   *SubscriptionManager
	usage  *UsageTracker
}

func newSession(e *Engine, userID string) *Session {
	subs := &SubscriptionManager{engine: e, userID: userID}
	return &Session{
		engine: e,
		userID: userID,
		subs:   subs,
		usage:  &UsageTracker{engine: e, userID: userID, subs: subs},
	}
}

// UserID returns the user the session belongs to.
func (s *Session) UserID() string { return s.userID }

// Subscriptions returns the user's subscription manager.
func (s *Session) Subscriptions() *SubscriptionManager { return s.subs }

// Usage returns the user's usage tracker.
func (s *Session) Usage() *UsageTracker { return s.usage }

// CanDownload loads the subscription and today's usage and checks the
// download limits. It records nothing; call Usage().RecordDownload after
// the download succeeded.
func (s *Session) CanDownload(ctx context.Context) entitlement.Result {
	sub := s.subs.Load(ctx)
	rec := s.usage.GetUsage(ctx)

	res := entitlement.CanDownload(sub, rec, s.engine.now())
	if !res.Allowed {
		s.engine.logger.Info("download denied",
			"user_id", s.userID,
			"rule", string(res.Rule),
			"used", res.Used,
			"limit", res.Limit,
		)
		s.engine.plugins.EmitDownloadDenied(ctx, s.userID, res)
	}
	return res
}

// CanAccessProduct checks whether the user may open productID. It records
// nothing; call Usage().RecordAccess once the product was opened.
func (s *Session) CanAccessProduct(ctx context.Context, productID string) entitlement.Result {
	sub := s.subs.Load(ctx)
	rec := s.usage.GetUsage(ctx)

	res := entitlement.CanAccessProduct(sub, rec, productID, s.engine.now())
	if !res.Allowed {
		s.engine.logger.Info("product access denied",
			"user_id", s.userID,
			"product_id", productID,
			"used", res.Used,
			"limit", res.Limit,
		)
		s.engine.plugins.EmitAccessDenied(ctx, s.userID, productID, res)
	}
	return res
}

// RemainingDownloads is the number of trial downloads left today. ok is
// false when no daily cap applies.
func (s *Session) RemainingDownloads(ctx context.Context) (n int, ok bool) {
	sub := s.subs.Load(ctx)
	rec := s.usage.GetUsage(ctx)
	return entitlement.RemainingDownloads(sub, rec, s.engine.now())
}
