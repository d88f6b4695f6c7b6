package usage

import "context"

// Store persists one usage record per user.
type Store interface {
	GetUsage(ctx context.Context, userID string) (Record, error)
	SaveUsage(ctx context.Context, userID string, r Record) error
}
