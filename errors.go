package digigate

import (
	"errors"
	"fmt"

	"github.com/xraph/digigate/store"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrInvalidInput = errors.New("digigate: invalid input")

	// Plan errors
	ErrPlanNotFound = errors.New("digigate: plan not found")

	// Subscription errors
	ErrNoSubscription    = errors.New("digigate: no subscription")
	ErrInvalidTransition = subscription.ErrInvalidTransition

	// Store errors
	ErrRecordNotFound = store.ErrNotFound
	ErrStoreClosed    = store.ErrClosed
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("digigate: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrNoSubscription)
}

// IsMalformed returns true if a stored record could not be decoded.
func IsMalformed(err error) bool {
	return errors.Is(err, subscription.ErrMalformed) ||
		errors.Is(err, usage.ErrMalformed)
}
