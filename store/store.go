// Package store defines the key/value persistence contract and the typed
// record layer the engine reads and writes through it.
package store

import (
	"context"
	"errors"
)

// Errors returned by every backend. The root package re-exports them.
var (
	ErrNotFound = errors.New("digigate: record not found")
	ErrClosed   = errors.New("digigate: store is closed")
)

// Store is a flat key/value store. Values are opaque JSON documents.
// Get returns ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Record keys. Every key is scoped to a user with ScopedKey.
const (
	KeySubscription   = "user_subscription"
	KeyUsage          = "user_usage"
	KeyTrialStartDate = "trial_start_date"
)

// ScopedKey returns "<key>:<userID>".
func ScopedKey(key, userID string) string {
	return key + ":" + userID
}
