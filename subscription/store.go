package subscription

import (
	"context"
	"time"
)

// Store persists the one subscription record each user holds.
type Store interface {
	GetSubscription(ctx context.Context, userID string) (*Subscription, error)
	SaveSubscription(ctx context.Context, s *Subscription) error
	DeleteSubscription(ctx context.Context, userID string) error
	SetTrialStart(ctx context.Context, userID string, at time.Time) error
}
