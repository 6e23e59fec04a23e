// Package dedupe provides idempotency tracking for mission-completion
// processing.
package dedupe

import (
	"context"
	"sync"
)

// Key builds the dedupe key for a mission completion. Auto-creation is
// idempotent per {userID, missionID}, not per mission alone.
func Key(userID, missionID string) string {
	return userID + "/" + missionID
}

// Deduper records seen keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it
	// if not. Returns true when key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key, allowing a retry. Used when an event was
	// marked seen but the follow-up work failed before persisting.
	Unrecord(ctx context.Context, key string)

	// Size returns the number of tracked keys.
	Size() int
}

// inMemoryDeduper is a bounded seen-set with FIFO eviction. The persistent
// store remains the durable duplicate check; this cache short-circuits the
// common case without a round trip.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order ring
	head    int      // next eviction slot
	maxSize int
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.maxSize)
	d.order = make([]string, 0, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}

	if len(d.order) < d.maxSize {
		d.order = append(d.order, key)
	} else {
		// Evict the oldest surviving key. Unrecorded keys leave empty
		// slots behind, which are simply reused.
		old := d.order[d.head]
		if old != "" {
			delete(d.seen, old)
		}
		d.order[d.head] = key
		d.head = (d.head + 1) % d.maxSize
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; !ok {
		return
	}
	delete(d.seen, key)
	for i, k := range d.order {
		if k == key {
			d.order[i] = ""
			break
		}
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
