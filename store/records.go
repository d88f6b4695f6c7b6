package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

// Records maps subscription and usage documents onto a key/value Store.
type Records struct {
	kv Store
}

// Compile-time interface checks.
var (
	_ subscription.Store = (*Records)(nil)
	_ usage.Store        = (*Records)(nil)
)

// NewRecords wraps kv.
func NewRecords(kv Store) *Records {
	return &Records{kv: kv}
}

// KV returns the underlying store.
func (r *Records) KV() Store { return r.kv }

func (r *Records) GetSubscription(ctx context.Context, userID string) (*subscription.Subscription, error) {
	data, err := r.kv.Get(ctx, ScopedKey(KeySubscription, userID))
	if err != nil {
		return nil, err
	}
	return subscription.Unmarshal(data)
}

func (r *Records) SaveSubscription(ctx context.Context, s *subscription.Subscription) error {
	data, err := subscription.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode subscription: %w", err)
	}
	return r.kv.Set(ctx, ScopedKey(KeySubscription, s.UserID), data)
}

func (r *Records) DeleteSubscription(ctx context.Context, userID string) error {
	if err := r.kv.Delete(ctx, ScopedKey(KeySubscription, userID)); err != nil {
		return err
	}
	return r.kv.Delete(ctx, ScopedKey(KeyTrialStartDate, userID))
}

// SetTrialStart stores the trial start as an RFC 3339 string.
func (r *Records) SetTrialStart(ctx context.Context, userID string, at time.Time) error {
	return r.kv.Set(ctx, ScopedKey(KeyTrialStartDate, userID), []byte(at.UTC().Format(time.RFC3339Nano)))
}

// TrialStart returns the stored trial start timestamp.
func (r *Records) TrialStart(ctx context.Context, userID string) (time.Time, error) {
	data, err := r.kv.Get(ctx, ScopedKey(KeyTrialStartDate, userID))
	if err != nil {
		return time.Time{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, fmt.Errorf("decode trial start: %w", err)
	}
	return at, nil
}

func (r *Records) GetUsage(ctx context.Context, userID string) (usage.Record, error) {
	data, err := r.kv.Get(ctx, ScopedKey(KeyUsage, userID))
	if err != nil {
		return usage.Record{}, err
	}
	return usage.Unmarshal(data)
}

func (r *Records) SaveUsage(ctx context.Context, userID string, rec usage.Record) error {
	data, err := usage.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}
	return r.kv.Set(ctx, ScopedKey(KeyUsage, userID), data)
}
