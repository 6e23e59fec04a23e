// Package service provides the coordination layer that implements the
// dependencies required by the HTTP API: item lifecycle, review scoring,
// mission auto-creation, visibility sync, and marketplace ranking.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/upskillhq/portfolio-engine/internal/adapters/mq/queue"
	"github.com/upskillhq/portfolio-engine/internal/adapters/mq/worker"
	"github.com/upskillhq/portfolio-engine/internal/adapters/notify"
	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/domain/dedupe"
	"github.com/upskillhq/portfolio-engine/pkg/logger"
	"github.com/upskillhq/portfolio-engine/pkg/metrics"
)

// Default auto-creation and publication thresholds.
const (
	defaultAutoCreateScore  = 85.0
	defaultAutoApproveScore = 90.0
	defaultPublishScore     = 7.0
	defaultHealthMin        = 3.0
)

// Service wires the stores, the dedupe cache, and the notification fan-out
// pipeline behind the operations the API exposes.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	deduper    dedupe.Deduper
	queue      queue.Queue
	dispatcher worker.Dispatcher
	pool       *worker.Pool

	workerCount int
	queueSize   int
	dedupeSize  int

	// Score thresholds. autoCreateScore and autoApproveScore are on the
	// 0-100 mission scale; publishScore and healthMin on the 0-10 rubric
	// scale.
	autoCreateScore  float64
	autoApproveScore float64
	publishScore     float64
	healthMin        float64

	started bool

	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		queueSize:        10000,
		dedupeSize:       50000,
		autoCreateScore:  defaultAutoCreateScore,
		autoApproveScore: defaultAutoApproveScore,
		publishScore:     defaultPublishScore,
		healthMin:        defaultHealthMin,
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes missing components and launches the dispatch workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper(
			dedupe.WithMaxSize(s.dedupeSize),
		)
	}
	if s.queue == nil {
		s.queue = queue.NewInMemoryQueue(
			queue.WithCapacity(s.queueSize),
		)
	}
	if s.dispatcher == nil {
		// No sink URLs configured: payloads are acknowledged and dropped.
		s.dispatcher = notify.NewClient()
	}

	s.pool = worker.NewPool(s.workerCount, s.queue, s.dispatcher)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "portfolio service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Float64("autoCreateScore", s.autoCreateScore),
		logger.Float64("autoApproveScore", s.autoApproveScore),
	)
	return nil
}

// Stop drains the fan-out pipeline and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping portfolio service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "portfolio service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		queueLen := s.queue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}

// enqueue hands a payload to the fan-out queue. The fan-out is
// fire-and-forget: a full or closed queue drops the payload after logging.
func (s *Service) enqueue(ctx context.Context, p queue.Payload) {
	if s.queue == nil {
		return
	}
	if !s.queue.Enqueue(ctx, p) {
		s.logger.Warn(ctx, "notification dropped at enqueue",
			logger.String("kind", string(p.Kind)),
			logger.String("user_id", p.UserID),
		)
	}
}
