// Package metrics provides Prometheus metrics for the portfolio engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio"

// Manager owns every Prometheus collector for the service.
type Manager struct {
	// Business metrics
	itemsCreated    *prometheus.CounterVec
	itemsApproved   prometheus.Counter
	itemsPublished  prometheus.Counter
	reviewsRecorded *prometheus.CounterVec
	missionDupes    prometheus.Counter
	visibilitySyncs prometheus.Counter
	visibilityErrs  prometheus.Counter

	// Ranking metrics
	rankingRuns      prometheus.Counter
	rankingDuration  prometheus.Histogram
	rankedProfiles   prometheus.Gauge
	profilesRebuilt  prometheus.Counter

	// Fan-out metrics
	notificationsSent   *prometheus.CounterVec
	notificationsFailed *prometheus.CounterVec
	queueSize           prometheus.Gauge
	queueCapacity       prometheus.Gauge
	queueEnqueues       prometheus.Counter
	queueEnqueueErrors  *prometheus.CounterVec
	queueDequeues       prometheus.Counter
	workerCount         prometheus.Gauge
	dispatchLatency     prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var (
	globalManager *Manager
	initOnce      sync.Once
)

// Init registers all collectors on the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		globalManager = newManager()
	})
}

func newManager() *Manager {
	return &Manager{
		itemsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Portfolio items created, by source.",
		}, []string{"source"}),
		itemsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_approved_total",
			Help:      "Portfolio items approved.",
		}),
		itemsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_published_total",
			Help:      "Portfolio items published.",
		}),
		reviewsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_recorded_total",
			Help:      "Review decisions recorded, by decision.",
		}, []string{"decision"}),
		missionDupes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mission_events_duplicate_total",
			Help:      "Mission-completion events dropped as duplicates.",
		}),
		visibilitySyncs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visibility_syncs_total",
			Help:      "Successful visibility propagation runs.",
		}),
		visibilityErrs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visibility_sync_errors_total",
			Help:      "Failed visibility propagation runs.",
		}),
		rankingRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ranking_runs_total",
			Help:      "Full-population ranking computations.",
		}),
		rankingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_duration_ms",
			Help:      "Ranking computation duration in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
		rankedProfiles: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ranked_profiles",
			Help:      "Profiles included in the last ranking run.",
		}),
		profilesRebuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_rebuilt_total",
			Help:      "Marketplace profile rebuilds.",
		}),
		notificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Notifications delivered, by kind.",
		}, []string{"kind"}),
		notificationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Notification deliveries that failed, by kind.",
		}, []string{"kind"}),
		queueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notify_queue_size",
			Help:      "Current fan-out queue depth.",
		}),
		queueCapacity: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notify_queue_capacity",
			Help:      "Configured fan-out queue capacity.",
		}),
		queueEnqueues: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_queue_enqueues_total",
			Help:      "Payloads accepted by the fan-out queue.",
		}),
		queueEnqueueErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_queue_enqueue_errors_total",
			Help:      "Payloads rejected by the fan-out queue, by reason.",
		}, []string{"reason"}),
		queueDequeues: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_queue_dequeues_total",
			Help:      "Payloads handed to dispatch workers.",
		}),
		workerCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_workers",
			Help:      "Running dispatch workers.",
		}),
		dispatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_latency_ms",
			Help:      "Notification dispatch latency in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by endpoint, method and status.",
		}, []string{"endpoint", "method", "status"}),
		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request duration in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"endpoint", "method"}),
	}
}

// Business metric hooks.

func RecordItemCreated(source string) {
	if globalManager != nil {
		globalManager.itemsCreated.WithLabelValues(source).Inc()
	}
}

func RecordItemApproved() {
	if globalManager != nil {
		globalManager.itemsApproved.Inc()
	}
}

func RecordItemPublished() {
	if globalManager != nil {
		globalManager.itemsPublished.Inc()
	}
}

func RecordReview(decision string) {
	if globalManager != nil {
		globalManager.reviewsRecorded.WithLabelValues(decision).Inc()
	}
}

func RecordMissionDuplicate() {
	if globalManager != nil {
		globalManager.missionDupes.Inc()
	}
}

func RecordVisibilitySync() {
	if globalManager != nil {
		globalManager.visibilitySyncs.Inc()
	}
}

func RecordVisibilitySyncError() {
	if globalManager != nil {
		globalManager.visibilityErrs.Inc()
	}
}

// Ranking metric hooks.

func RecordRankingRun(profiles int, durationMs float64) {
	if globalManager != nil {
		globalManager.rankingRuns.Inc()
		globalManager.rankingDuration.Observe(durationMs)
		globalManager.rankedProfiles.Set(float64(profiles))
	}
}

func RecordProfileRebuilt() {
	if globalManager != nil {
		globalManager.profilesRebuilt.Inc()
	}
}

// Fan-out metric hooks.

func RecordNotificationSent(kind string) {
	if globalManager != nil {
		globalManager.notificationsSent.WithLabelValues(kind).Inc()
	}
}

func RecordNotificationFailed(kind string) {
	if globalManager != nil {
		globalManager.notificationsFailed.WithLabelValues(kind).Inc()
	}
}

func UpdateQueueSize(n int) {
	if globalManager != nil {
		globalManager.queueSize.Set(float64(n))
	}
}

func UpdateQueueCapacity(n int) {
	if globalManager != nil {
		globalManager.queueCapacity.Set(float64(n))
	}
}

func RecordQueueEnqueue() {
	if globalManager != nil {
		globalManager.queueEnqueues.Inc()
	}
}

func RecordQueueEnqueueError(reason string) {
	if globalManager != nil {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

func RecordQueueDequeue() {
	if globalManager != nil {
		globalManager.queueDequeues.Inc()
	}
}

func UpdateWorkerCount(n int) {
	if globalManager != nil {
		globalManager.workerCount.Set(float64(n))
	}
}

func RecordDispatchLatency(ms float64) {
	if globalManager != nil {
		globalManager.dispatchLatency.Observe(ms)
	}
}

// HTTP metric hooks.

func RecordHTTPRequest(endpoint, method, status string) {
	if globalManager != nil {
		globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	if globalManager != nil {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
	}
}
