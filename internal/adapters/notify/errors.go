package notify

import "errors"

// Sentinel kinds for sink errors.
var (
	// ErrExternalService marks a downstream dependency failure. On the
	// fan-out path this is swallowed after logging; critical paths
	// propagate it.
	ErrExternalService = errors.New("external service failure")
)
