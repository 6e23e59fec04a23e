package service

import "errors"

// Sentinel errors surfaced by the coordination layer.
var (
	// ErrSync marks a visibility propagation that failed before reaching
	// every item. The store guarantees no partial update happened.
	ErrSync = errors.New("visibility sync failed")
)
