package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for domain errors shared across subsystems.
var (
	// ErrValidation marks malformed input rejected before any state mutation.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a writer that lost a race on an entity, including
	// owner edits attempted while a review holds the item. Callers should
	// re-fetch and retry a bounded number of times.
	ErrConflict = errors.New("concurrent modification conflict")
)

// WrapValidation builds a validation error with a human-readable reason.
// Callers test the result with errors.Is(err, ErrValidation).
func WrapValidation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
