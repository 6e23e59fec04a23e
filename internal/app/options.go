package service

import (
	"time"

	"github.com/upskillhq/portfolio-engine/internal/adapters/mq/queue"
	"github.com/upskillhq/portfolio-engine/internal/adapters/mq/worker"
	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDispatcher sets the notification dispatcher used by the fan-out
// workers.
func WithDispatcher(d worker.Dispatcher) Option {
	return func(s *Service) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithQueue overrides the fan-out queue.
func WithQueue(q queue.Queue) Option {
	return func(s *Service) {
		if q != nil {
			s.queue = q
		}
	}
}

// WithWorkerCount sets the number of dispatch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the fan-out queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the mission dedupe cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithAutoCreateScore sets the mission score (0-100) at or above which a
// completion auto-creates a portfolio item.
func WithAutoCreateScore(score float64) Option {
	return func(s *Service) {
		if score >= 0 && score <= 100 {
			s.autoCreateScore = score
		}
	}
}

// WithAutoApproveScore sets the mission score (0-100) at or above which an
// auto-created item skips review.
func WithAutoApproveScore(score float64) Option {
	return func(s *Service) {
		if score >= 0 && score <= 100 {
			s.autoApproveScore = score
		}
	}
}

// WithPublishScore sets the review total (0-10) at or above which a review
// approves the item.
func WithPublishScore(score float64) Option {
	return func(s *Service) {
		if score >= 0 && score <= 10 {
			s.publishScore = score
		}
	}
}

// WithHealthMin sets the portfolio health (0-10) required before a
// marketplace profile is first materialized.
func WithHealthMin(health float64) Option {
	return func(s *Service) {
		if health >= 0 && health <= 10 {
			s.healthMin = health
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides id generation. Used by tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
