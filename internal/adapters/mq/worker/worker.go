// Package worker runs the dispatch loop that drains the fan-out queue and
// delivers notifications to the external sinks.
//
// Delivery is best-effort: a failed dispatch is logged and dropped, never
// retried, and never reported back to the operation that queued it.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/upskillhq/portfolio-engine/internal/adapters/mq/queue"
	"github.com/upskillhq/portfolio-engine/pkg/logger"
	"github.com/upskillhq/portfolio-engine/pkg/metrics"
)

// Shutdown timing constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Dispatcher delivers a single payload to its external destination.
type Dispatcher interface {
	Dispatch(ctx context.Context, p queue.Payload) error
}

// Queue defines how workers receive payloads.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Payload
}

// Worker drains the queue until stopped.
type Worker struct {
	queue      Queue
	dispatcher Dispatcher
	name       string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a single dispatch worker.
func NewWorker(q Queue, d Dispatcher, opts ...Option) *Worker {
	w := &Worker{
		queue:      q,
		dispatcher: d,
		name:       "dispatch",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the dispatch loop. It returns when ctx is cancelled, Shutdown
// is called, or the queue closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	payloads := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case p, ok := <-payloads:
			if !ok {
				return
			}
			w.deliver(ctx, p)
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight payload.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// deliver dispatches one payload. Failures are logged and dropped.
func (w *Worker) deliver(ctx context.Context, p queue.Payload) {
	start := time.Now()
	err := w.dispatcher.Dispatch(ctx, p)
	metrics.RecordDispatchLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordNotificationFailed(string(p.Kind))
		w.logger.Warn(ctx, "notification dropped",
			logger.String("id", p.ID),
			logger.String("kind", string(p.Kind)),
			logger.String("user_id", p.UserID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordNotificationSent(string(p.Kind))
}

// Pool manages a fixed set of dispatch workers.
type Pool struct {
	workers []*Worker

	shutdown chan struct{}
	logger   logger.Logger
}

// NewPool creates a pool of count workers sharing one queue and dispatcher.
func NewPool(count int, q Queue, d Dispatcher) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}

	p := &Pool{
		workers:  make([]*Worker, count),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("dispatch-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, d, WithName("dispatch-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(count)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals every worker and waits briefly for each to finish.
func (p *Pool) Stop() {
	select {
	case <-p.shutdown:
	default:
		close(p.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown closes the queue and drains the workers within a bounded window.
func (p *Pool) Shutdown(ctx context.Context, q interface{ Close() error }) error {
	if err := q.Close(); err != nil {
		p.logger.Warn(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker", i))
		}
	}
	return nil
}
