// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SQLitePath points at the persistent database file. Empty selects the
	// in-memory store.
	SQLitePath string `koanf:"sqlite_path"`

	// NotifyQueueSize bounds the in-memory notification queue.
	NotifyQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of notification dispatch workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the mission deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// AutoCreateScore is the mission score (0-100) at or above which a
	// completion auto-creates a portfolio item.
	AutoCreateScore float64 `koanf:"auto_create_score"`

	// AutoApproveScore is the mission score (0-100) at or above which an
	// auto-created item skips review.
	AutoApproveScore float64 `koanf:"auto_approve_score"`

	// PublishScore is the review total (0-10) at or above which a review
	// approves the item.
	PublishScore float64 `koanf:"publish_score"`

	// MarketplaceHealthMin is the portfolio health (0-10) required before
	// a marketplace profile is first materialized.
	MarketplaceHealthMin float64 `koanf:"marketplace_health_min"`

	// MaxRankingsLimit caps GET /v1/marketplace/rankings?limit.
	MaxRankingsLimit int `koanf:"max_rankings_limit"`

	// NotificationURL and ReadinessURL are the external sink endpoints.
	// Empty disables the corresponding sink.
	NotificationURL string `koanf:"notification_url"`
	ReadinessURL    string `koanf:"readiness_url"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		NotifyQueueSize:      10_000,
		WorkerCount:          runtime.NumCPU(),
		DedupeSize:           50_000,
		AutoCreateScore:      85,
		AutoApproveScore:     90,
		PublishScore:         7.0,
		MarketplaceHealthMin: 3.0,
		MaxRankingsLimit:     100,
	}
}
