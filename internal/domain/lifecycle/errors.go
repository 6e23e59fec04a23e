package lifecycle

import "errors"

// Sentinel kinds for workflow errors.
var (
	// ErrInvalidTransition marks a lifecycle step not permitted from the
	// current state. The mutation is rejected atomically.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)
