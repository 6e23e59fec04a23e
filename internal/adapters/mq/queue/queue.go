// Package queue provides the buffer between the coordination layer and the
// notification dispatch workers.
//
// Enqueue never blocks: the fan-out is fire-and-forget, so on backpressure
// the payload is dropped by the caller (logged, never surfaced to the
// operation that produced it).
package queue

import (
	"context"
	"sync"

	"github.com/upskillhq/portfolio-engine/internal/domain/model"
	"github.com/upskillhq/portfolio-engine/pkg/metrics"
)

// defaultCapacity bounds the queue when no option overrides it.
const defaultCapacity = 10000

// Payload is the notification type flowing through the queue.
type Payload = model.Notification

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a payload. Returns false when the queue is full or
	// closed; the payload is not retried.
	Enqueue(ctx context.Context, p Payload) bool

	// Dequeue returns a channel receiving payloads as they arrive. The
	// channel is closed when the queue closes.
	Dequeue(ctx context.Context) <-chan Payload

	// Len returns the current queue depth.
	Len(ctx context.Context) int

	// Close stops the queue; no further payloads are accepted.
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	payloads chan Payload
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.payloads = make(chan Payload, q.capacity)
	metrics.UpdateQueueCapacity(q.capacity)
	return q
}

// Enqueue adds a payload without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, p Payload) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}

	select {
	case q.payloads <- p:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.payloads))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel receiving payloads until the queue closes or
// ctx is done.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Payload {
	out := make(chan Payload)
	go func() {
		defer close(out)
		for p := range q.payloads {
			select {
			case out <- p:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.payloads))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current queue depth.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.payloads)
}

// Close stops the queue. Idempotent.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.payloads)
	q.closed = true
	return nil
}
