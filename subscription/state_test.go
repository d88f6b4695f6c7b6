package subscription

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/digigate/plan"
)

var t0 = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func TestCanTransition_ValidTransitions(t *testing.T) {
	for transition := range validTransitions {
		t.Run(string(transition.From)+"_to_"+string(transition.To), func(t *testing.T) {
			if !CanTransition(transition.From, transition.To) {
				t.Fatalf("expected transition %s -> %s to be valid", transition.From, transition.To)
			}
		})
	}
}

func TestCanTransition_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
	}{
		{"trial_to_trial", StatusTrial, StatusTrial},
		{"active_to_trial", StatusActive, StatusTrial},
		{"active_to_expired", StatusActive, StatusExpired},
		{"expired_to_trial", StatusExpired, StatusTrial},
		{"expired_to_expired", StatusExpired, StatusExpired},
		{"cancelled_to_trial", StatusCancelled, StatusTrial},
		{"cancelled_to_expired", StatusCancelled, StatusExpired},
		{"none_to_active", "", StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if CanTransition(tt.from, tt.to) {
				t.Fatalf("expected transition %s -> %s to be invalid", tt.from, tt.to)
			}
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t, []Status{StatusActive, StatusCancelled, StatusExpired}, ValidTransitionsFrom(StatusTrial))
	assert.Equal(t, []Status{StatusActive, StatusCancelled}, ValidTransitionsFrom(StatusCancelled))
	assert.Empty(t, ValidTransitionsFrom("bogus"))
}

func TestNewTrial(t *testing.T) {
	s := NewTrial("u1", plan.DefaultTrial(), t0)

	end, ok := s.TrialEndDate()
	require.True(t, ok)
	assert.Equal(t, t0.Add(7*24*time.Hour), end)
	assert.Equal(t, t0.Add(30*24*time.Hour), s.EndDate)
	assert.False(t, s.AutoRenew)
	assert.Equal(t, plan.TrialID, s.PlanID)
	assert.Equal(t, 10, s.Plan.MaxProducts)
	assert.Equal(t, 21, s.Plan.MaxDownloads)
	assert.False(t, s.ID.IsNil())

	assert.True(t, s.IsTrialActive())
	assert.False(t, s.IsSubscriptionActive())
	assert.True(t, s.HasAccess())
	assert.False(t, s.IsTrialExpired())
}

func TestNewActive(t *testing.T) {
	premium, _ := plan.Default().Get("premium")
	s := NewActive("u1", premium, t0)

	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, "premium", s.PlanID)
	assert.Equal(t, t0.Add(30*24*time.Hour), s.EndDate)
	assert.True(t, s.AutoRenew)
	assert.True(t, s.HasAccess())
	assert.False(t, s.IsTrialActive())
	_, ok := s.TrialEndDate()
	assert.False(t, ok)
}

func TestNilSubscriptionFlags(t *testing.T) {
	var s *Subscription
	assert.Equal(t, Status(""), s.Status())
	assert.False(t, s.IsTrialActive())
	assert.False(t, s.IsSubscriptionActive())
	assert.False(t, s.HasAccess())
	assert.False(t, s.IsTrialExpired())
	assert.Equal(t, 0, s.TrialDaysLeft(t0))
	assert.Equal(t, NoticeNone, s.TrialNotice(t0))

	_, err := s.Cancel(t0)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestTrialDaysLeft(t *testing.T) {
	s := NewTrial("u1", plan.DefaultTrial(), t0)
	day := 24 * time.Hour

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"start", t0, 7},
		{"just after start", t0.Add(time.Nanosecond), 7},
		{"six and a half days", t0.Add(6*day + 12*time.Hour), 1},
		{"exactly at end", t0.Add(7 * day), 0},
		{"after end", t0.Add(9 * day), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.TrialDaysLeft(tt.at))
		})
	}
}

func TestTrialLapsed(t *testing.T) {
	s := NewTrial("u1", plan.DefaultTrial(), t0)
	assert.False(t, s.TrialLapsed(t0.Add(7*24*time.Hour-time.Second)))
	assert.True(t, s.TrialLapsed(t0.Add(7*24*time.Hour)))

	premium, _ := plan.Default().Get("premium")
	assert.False(t, NewActive("u1", premium, t0).TrialLapsed(t0.Add(365*24*time.Hour)))
}

func TestExpire(t *testing.T) {
	trial := NewTrial("u1", plan.DefaultTrial(), t0)
	later := t0.Add(8 * 24 * time.Hour)

	expired, err := trial.Expire(later)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, expired.Status())
	assert.True(t, expired.IsTrialExpired())
	assert.False(t, expired.HasAccess())
	assert.Equal(t, trial.ID.String(), expired.ID.String())
	assert.Equal(t, later, expired.UpdatedAt)

	// original untouched
	assert.Equal(t, StatusTrial, trial.Status())

	_, err = expired.Expire(later)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestCancelKeepsDatesAndPlan(t *testing.T) {
	premium, _ := plan.Default().Get("premium")
	active := NewActive("u1", premium, t0)
	at := t0.Add(3 * 24 * time.Hour)

	cancelled, err := active.Cancel(at)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status())
	assert.False(t, cancelled.AutoRenew)
	assert.Equal(t, active.StartDate, cancelled.StartDate)
	assert.Equal(t, active.EndDate, cancelled.EndDate)
	assert.Equal(t, "premium", cancelled.PlanID)
	assert.Equal(t, premium.MaxDownloads, cancelled.Plan.MaxDownloads)
	assert.False(t, cancelled.HasAccess())
	assert.Equal(t, Cancelled{At: at}, cancelled.State)

	again, err := cancelled.Cancel(at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, Cancelled{At: at}, again.State)
}

func TestCancelTrialRetainsTrialEnd(t *testing.T) {
	trial := NewTrial("u1", plan.DefaultTrial(), t0)
	cancelled, err := trial.Cancel(t0.Add(time.Hour))
	require.NoError(t, err)

	end, ok := cancelled.TrialEndDate()
	require.True(t, ok)
	assert.Equal(t, t0.Add(7*24*time.Hour), end)
	assert.False(t, cancelled.IsTrialActive())
	assert.Equal(t, 0, cancelled.TrialDaysLeft(t0))
}

func TestTrialNotice(t *testing.T) {
	trial := NewTrial("u1", plan.DefaultTrial(), t0)
	day := 24 * time.Hour
	expired, _ := trial.Expire(t0.Add(8 * day))
	premium, _ := plan.Default().Get("premium")

	tests := []struct {
		name string
		sub  *Subscription
		at   time.Time
		want Notice
	}{
		{"fresh trial", trial, t0, NoticeNone},
		{"three days left", trial, t0.Add(4 * day), NoticeNone},
		{"two days left", trial, t0.Add(5 * day), NoticeExpiringSoon},
		{"one day left", trial, t0.Add(6 * day), NoticeLastDay},
		{"hours left", trial, t0.Add(6*day + 20*time.Hour), NoticeLastDay},
		{"expired", expired, t0.Add(8 * day), NoticeExpired},
		{"paid", NewActive("u1", premium, t0), t0, NoticeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.TrialNotice(tt.at))
		})
	}
}
