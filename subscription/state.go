package subscription

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidTransition is returned when a lifecycle change is not allowed
// from the subscription's current state.
var ErrInvalidTransition = errors.New("digigate: invalid subscription transition")

// State is the lifecycle position of a subscription. The set of
// implementations is closed: Trial, Active, Cancelled and Expired.
type State interface {
	Status() Status
	isState()
}

// Trial grants reduced access until EndsAt.
type Trial struct {
	EndsAt time.Time
}

// Active is a paid subscription.
type Active struct{}

// Cancelled keeps the record's dates and plan but grants no access.
// TrialEndsAt is set when a trial was cancelled.
type Cancelled struct {
	At          time.Time
	TrialEndsAt time.Time
}

// Expired is a lapsed trial. At is the trial end when known.
type Expired struct {
	At time.Time
}

func (Trial) Status() Status { return StatusTrial }
func (Active) Status() Status { return StatusActive }
func (Cancelled) Status() Status { return StatusCancelled }
func (Expired) Status() Status { return StatusExpired }

func (Trial) isState() {}
func (Active) isState() {}
func (Cancelled) isState() {}
func (Expired) isState() {}

// Transition represents a state change.
type Transition struct {
	From Status
	To   Status
}

// validTransitions defines all allowed state changes. Subscribing replaces
// the record, so active to active is a plan change.
var validTransitions = map[Transition]bool{
	{StatusTrial, StatusActive}:        true, // Trial converted to paid
	{StatusTrial, StatusExpired}:       true, // Trial ran out
	{StatusTrial, StatusCancelled}:     true,
	{StatusActive, StatusActive}:       true, // Plan change
	{StatusActive, StatusCancelled}:    true,
	{StatusExpired, StatusActive}:      true, // Converted after expiry
	{StatusExpired, StatusCancelled}:   true,
	{StatusCancelled, StatusActive}:    true, // Re-subscription
	{StatusCancelled, StatusCancelled}: true,
}

// CanTransition checks if a transition from one status to another is valid.
func CanTransition(from, to Status) bool {
	return validTransitions[Transition{from, to}]
}

// ValidTransitionsFrom returns all valid target statuses from the given status.
func ValidTransitionsFrom(from Status) []Status {
	targets := make([]Status, 0)
	for t := range validTransitions {
		if t.From == from {
			targets = append(targets, t.To)
		}
	}
	slices.Sort(targets)
	return targets
}

// Expire returns the expired replacement for a trial record.
func (s *Subscription) Expire(now time.Time) (*Subscription, error) {
	t, ok := s.stateTrial()
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status(), StatusExpired)
	}
	next := s.Clone()
	next.State = Expired{At: t.EndsAt}
	next.Touch(now)
	return next, nil
}

// Cancel returns the cancelled replacement. Dates and plan are retained and
// auto-renew is switched off.
func (s *Subscription) Cancel(now time.Time) (*Subscription, error) {
	if s == nil || !CanTransition(s.Status(), StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status(), StatusCancelled)
	}
	next := s.Clone()
	c := Cancelled{At: now}
	if end, ok := s.TrialEndDate(); ok {
		c.TrialEndsAt = end
	}
	if prev, ok := s.State.(Cancelled); ok {
		c = prev
	}
	next.State = c
	next.AutoRenew = false
	next.Touch(now)
	return next, nil
}

// ──────────────────────────────────────────────────
// Trial notices
// ──────────────────────────────────────────────────

// Notice is the banner a client should show about the trial.
type Notice int

const (
	NoticeNone Notice = iota
	NoticeExpiringSoon
	NoticeLastDay
	NoticeExpired
)

func (n Notice) String() string {
	switch n {
	case NoticeExpiringSoon:
		return "expiring_soon"
	case NoticeLastDay:
		return "last_day"
	case NoticeExpired:
		return "expired"
	default:
		return "none"
	}
}

// TrialNotice picks the banner for the record at now.
func (s *Subscription) TrialNotice(now time.Time) Notice {
	switch {
	case s.IsTrialExpired():
		return NoticeExpired
	case !s.IsTrialActive():
		return NoticeNone
	}
	switch days := s.TrialDaysLeft(now); {
	case days <= 1:
		return NoticeLastDay
	case days <= 2:
		return NoticeExpiringSoon
	default:
		return NoticeNone
	}
}
