package subscription

import (
	"math"
	"time"

	"github.com/xraph/digigate/id"
	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/types"
)

const (
	// TrialLength is how long a new user keeps trial access.
	TrialLength = 7 * 24 * time.Hour

	// Period is the nominal length of a paid period and of a trial record.
	Period = 30 * 24 * time.Hour

	day = 24 * time.Hour
)

type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Subscription is the single entitlement record a user holds. It is
// replaced wholesale on every transition; callers never mutate it in place.
type Subscription struct {
	types.Entity
	ID        id.SubscriptionID
	UserID    string
	PlanID    string
	Plan      *plan.Plan
	State     State
	StartDate time.Time
	EndDate   time.Time
	AutoRenew bool
}

// NewTrial starts a trial for userID at now using the given trial plan.
func NewTrial(userID string, trial *plan.Plan, now time.Time) *Subscription {
	return &Subscription{
		Entity:    types.NewEntityAt(now),
		ID:        id.NewSubscriptionID(),
		UserID:    userID,
		PlanID:    trial.ID,
		Plan:      trial.Clone(),
		State:     Trial{EndsAt: now.Add(TrialLength)},
		StartDate: now,
		EndDate:   now.Add(Period),
		AutoRenew: false,
	}
}

// NewActive builds a fresh paid subscription to p starting at now.
func NewActive(userID string, p *plan.Plan, now time.Time) *Subscription {
	return &Subscription{
		Entity:    types.NewEntityAt(now),
		ID:        id.NewSubscriptionID(),
		UserID:    userID,
		PlanID:    p.ID,
		Plan:      p.Clone(),
		State:     Active{},
		StartDate: now,
		EndDate:   now.Add(Period),
		AutoRenew: true,
	}
}

// Status is derived from the state. A nil subscription has no status.
func (s *Subscription) Status() Status {
	if s == nil || s.State == nil {
		return ""
	}
	return s.State.Status()
}

func (s *Subscription) IsTrialActive() bool {
	return s.Status() == StatusTrial
}

func (s *Subscription) IsSubscriptionActive() bool {
	return s.Status() == StatusActive
}

// HasAccess reports whether the user may browse and purchase.
func (s *Subscription) HasAccess() bool {
	return s.IsTrialActive() || s.IsSubscriptionActive()
}

// IsTrialExpired is true once the trial has lapsed. Records whose stored
// flags disagreed (trial status without an active trial) decode as expired,
// so they land here too.
func (s *Subscription) IsTrialExpired() bool {
	return s.Status() == StatusExpired
}

// TrialEndDate returns the trial end when the record carries one.
func (s *Subscription) TrialEndDate() (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	switch st := s.State.(type) {
	case Trial:
		return st.EndsAt, true
	case Expired:
		return st.At, !st.At.IsZero()
	case Cancelled:
		return st.TrialEndsAt, !st.TrialEndsAt.IsZero()
	}
	return time.Time{}, false
}

// TrialDaysLeft is the number of started days left in the trial, rounded up
// and floored at zero. It is zero for any record not on trial.
func (s *Subscription) TrialDaysLeft(now time.Time) int {
	t, ok := s.stateTrial()
	if !ok {
		return 0
	}
	left := t.EndsAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(float64(left) / float64(day)))
}

// TrialLimited reports whether trial limits apply at now. A cancelled trial
// stays limited until its trial end date.
func (s *Subscription) TrialLimited(now time.Time) bool {
	if s == nil {
		return false
	}
	switch st := s.State.(type) {
	case Trial:
		return true
	case Cancelled:
		return !st.TrialEndsAt.IsZero() && now.Before(st.TrialEndsAt)
	}
	return false
}

// TrialLapsed reports whether a trial record has reached its end at now.
func (s *Subscription) TrialLapsed(now time.Time) bool {
	t, ok := s.stateTrial()
	return ok && !now.Before(t.EndsAt)
}

func (s *Subscription) stateTrial() (Trial, bool) {
	if s == nil {
		return Trial{}, false
	}
	t, ok := s.State.(Trial)
	return t, ok
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Plan = s.Plan.Clone()
	return &cp
}
