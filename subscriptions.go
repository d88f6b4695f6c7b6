package digigate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xraph/digigate/subscription"
)

// SubscriptionManager owns one user's subscription record. It caches the
// record it last read or wrote; every Load re-reads the store.
type SubscriptionManager struct {
	engine *Engine
	userID string

	mu      sync.Mutex
	current *subscription.Subscription
}

// Load reads the user's subscription. A user without a record starts a
// trial. A trial past its end date is expired and persisted. Load never
// fails; storage errors are logged and a fresh trial is returned.
func (m *SubscriptionManager) Load(ctx context.Context) *subscription.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.engine
	now := e.now()

	sub, err := e.records.GetSubscription(ctx, m.userID)
	switch {
	case err == nil:
	case errors.Is(err, ErrRecordNotFound) || IsMalformed(err):
		if !errors.Is(err, ErrRecordNotFound) {
			e.logger.Warn("digigate: discarding unreadable subscription",
				"user_id", m.userID,
				"error", err,
			)
		}
		m.current = m.startTrial(ctx, now, true)
		return m.current.Clone()
	default:
		e.logger.Warn("digigate: load subscription failed",
			"user_id", m.userID,
			"error", err,
		)
		m.current = m.startTrial(ctx, now, false)
		return m.current.Clone()
	}

	if sub.UserID == "" {
		sub.UserID = m.userID
	}

	if sub.TrialLapsed(now) {
		expired, err := sub.Expire(now)
		if err == nil {
			if err := e.records.SaveSubscription(ctx, expired); err != nil {
				e.logger.Error("digigate: persist expired trial failed",
					"user_id", m.userID,
					"error", err,
				)
			}
			e.logger.Info("trial expired", "user_id", m.userID, "subscription_id", expired.ID.String())
			e.plugins.EmitTrialExpired(ctx, expired.Clone())
			sub = expired
		}
	}

	m.current = sub
	return sub.Clone()
}

// startTrial builds a trial from the catalog template and, when persist is
// set, writes it along with the trial start timestamp.
func (m *SubscriptionManager) startTrial(ctx context.Context, now time.Time, persist bool) *subscription.Subscription {
	e := m.engine
	sub := subscription.NewTrial(m.userID, e.catalog.Trial(), now)
	if !persist {
		return sub
	}

	if err := e.records.SaveSubscription(ctx, sub); err != nil {
		e.logger.Error("digigate: persist trial failed",
			"user_id", m.userID,
			"error", err,
		)
		return sub
	}
	if err := e.records.SetTrialStart(ctx, m.userID, now); err != nil {
		e.logger.Warn("digigate: persist trial start failed",
			"user_id", m.userID,
			"error", err,
		)
	}

	e.logger.Info("trial started",
		"user_id", m.userID,
		"subscription_id", sub.ID.String(),
	)
	e.plugins.EmitTrialStarted(ctx, sub.Clone())
	return sub
}

// Current returns the cached record without touching the store. It is nil
// until Load, SubscribeToPlan or Cancel succeeded once.
func (m *SubscriptionManager) Current() *subscription.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// SubscribeToPlan replaces the user's record with a fresh active
// subscription to planID. Nothing changes when the plan is unknown or the
// write fails.
func (m *SubscriptionManager) SubscribeToPlan(ctx context.Context, planID string) (*subscription.Subscription, error) {
	e := m.engine

	p, ok := e.catalog.Get(planID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPlanNotFound, planID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.current
	if previous != nil && !subscription.CanTransition(previous.Status(), subscription.StatusActive) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, previous.Status(), subscription.StatusActive)
	}

	next := subscription.NewActive(m.userID, p, e.now())
	if err := e.records.SaveSubscription(ctx, next); err != nil {
		e.logger.Error("digigate: subscribe failed",
			"user_id", m.userID,
			"plan_id", planID,
			"error", err,
		)
		return nil, fmt.Errorf("digigate: save subscription: %w", err)
	}

	m.current = next
	e.logger.Info("subscribed",
		"user_id", m.userID,
		"plan_id", planID,
		"subscription_id", next.ID.String(),
	)
	e.plugins.EmitSubscribed(ctx, next.Clone(), previous.Clone())
	return next.Clone(), nil
}

// Cancel marks the subscription cancelled and switches off auto-renew. The
// plan and dates are kept.
func (m *SubscriptionManager) Cancel(ctx context.Context) (*subscription.Subscription, error) {
	e := m.engine

	m.mu.Lock()
	defer m.mu.Unlock()

	sub := m.current
	if sub == nil {
		stored, err := e.records.GetSubscription(ctx, m.userID)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return nil, ErrNoSubscription
			}
			return nil, fmt.Errorf("digigate: load subscription: %w", err)
		}
		sub = stored
	}

	next, err := sub.Cancel(e.now())
	if err != nil {
		return nil, err
	}
	if err := e.records.SaveSubscription(ctx, next); err != nil {
		e.logger.Error("digigate: cancel failed",
			"user_id", m.userID,
			"error", err,
		)
		return nil, fmt.Errorf("digigate: save subscription: %w", err)
	}

	m.current = next
	e.logger.Info("subscription cancelled",
		"user_id", m.userID,
		"plan_id", next.PlanID,
	)
	e.plugins.EmitSubscriptionCancelled(ctx, next.Clone())
	return next.Clone(), nil
}

// Reset deletes the stored record. The next Load starts a new trial.
func (m *SubscriptionManager) Reset(ctx context.Context) error {
	e := m.engine

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := e.records.DeleteSubscription(ctx, m.userID); err != nil {
		return fmt.Errorf("digigate: reset subscription: %w", err)
	}
	m.current = nil

	e.logger.Info("subscription reset", "user_id", m.userID)
	e.plugins.EmitSubscriptionReset(ctx, m.userID)
	return nil
}

// ──────────────────────────────────────────────────
// Derived flags over the cached record
// ──────────────────────────────────────────────────

// IsTrialActive reports whether the cached record is a running trial.
func (m *SubscriptionManager) IsTrialActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.IsTrialActive()
}

// IsSubscriptionActive reports whether the cached record is a paid subscription.
func (m *SubscriptionManager) IsSubscriptionActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.IsSubscriptionActive()
}

// HasAccess reports whether the user is on a running trial or a paid plan.
func (m *SubscriptionManager) HasAccess() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.HasAccess()
}

// IsTrialExpired reports whether the cached record is a lapsed trial.
func (m *SubscriptionManager) IsTrialExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.IsTrialExpired()
}

// TrialDaysLeft counts started days until the trial ends, at the engine clock.
func (m *SubscriptionManager) TrialDaysLeft() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.TrialDaysLeft(m.engine.now())
}

// TrialNotice is the banner to show for the cached record.
func (m *SubscriptionManager) TrialNotice() subscription.Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.TrialNotice(m.engine.now())
}
