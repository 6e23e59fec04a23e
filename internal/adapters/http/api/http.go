// Package api declares HTTP contracts and route registration for the
// portfolio engine.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/upskillhq/portfolio-engine/internal/app"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
	"github.com/upskillhq/portfolio-engine/internal/domain/ranking"
)

// Dependencies required by the HTTP handlers. The interface bundle keeps
// the handler layer loosely coupled to the coordination layer.
type Dependencies interface {
	// Event intake.
	HandleMissionCompleted(ctx context.Context, ev model.MissionCompleted) (*model.PortfolioItem, bool, error)
	SyncVisibility(ctx context.Context, ev model.VisibilityChanged) (int, error)

	// Item lifecycle.
	CreateItem(ctx context.Context, in service.CreateItemInput) (*model.PortfolioItem, error)
	ImportItem(ctx context.Context, in service.ImportInput) (*model.PortfolioItem, error)
	GetItem(ctx context.Context, id string) (*model.PortfolioItem, error)
	ListUserItems(ctx context.Context, userID string) ([]model.PortfolioItem, error)
	UpdateItemContent(ctx context.Context, in service.UpdateItemInput) (*model.PortfolioItem, error)
	SubmitItem(ctx context.Context, itemID, userID string) (*model.PortfolioItem, error)
	StartReview(ctx context.Context, itemID, reviewerID, reviewerName string) (*model.PortfolioReview, error)
	RecordReview(ctx context.Context, in service.ReviewInput) (*model.PortfolioReview, error)
	ListItemReviews(ctx context.Context, itemID string) ([]model.PortfolioReview, error)
	PublishItem(ctx context.Context, itemID, userID string, vis model.Visibility) (*model.PortfolioItem, error)

	// Marketplace telemetry and ranking.
	RecordItemView(ctx context.Context, itemID string) error
	RecordEmployerContact(ctx context.Context, itemID string) error
	Rankings(ctx context.Context, limit int) ([]ranking.Entry, error)
	GetMarketplaceProfile(ctx context.Context, userID string) (*model.MarketplaceProfile, error)
	UpdateReadiness(ctx context.Context, userID string, score float64) (*model.MarketplaceProfile, error)
	DeactivateProfile(ctx context.Context, userID string) error
	RebuildProfile(ctx context.Context, userID, username string) (*model.MarketplaceProfile, error)
}

// Server wires the HTTP routes for the business API.
type Server struct {
	deps  Dependencies
	stats StatsProvider
}

// NewServer creates the API server.
func NewServer(deps Dependencies, stats StatsProvider) *Server {
	return &Server{deps: deps, stats: stats}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(RecoveryMiddleware, MetricsMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/events/mission-completed", s.handleMissionCompleted).Methods(http.MethodPost)
	v1.HandleFunc("/events/visibility-changed", s.handleVisibilityChanged).Methods(http.MethodPost)

	v1.HandleFunc("/items", s.handleCreateItem).Methods(http.MethodPost)
	v1.HandleFunc("/items/import", s.handleImportItem).Methods(http.MethodPost)
	v1.HandleFunc("/items/{id}", s.handleGetItem).Methods(http.MethodGet)
	v1.HandleFunc("/items/{id}", s.handleUpdateItem).Methods(http.MethodPatch)
	v1.HandleFunc("/items/{id}/submit", s.handleSubmitItem).Methods(http.MethodPost)
	v1.HandleFunc("/items/{id}/review/start", s.handleStartReview).Methods(http.MethodPost)
	v1.HandleFunc("/items/{id}/review", s.handleRecordReview).Methods(http.MethodPost)
	v1.HandleFunc("/items/{id}/reviews", s.handleListReviews).Methods(http.MethodGet)
	v1.HandleFunc("/items/{id}/publish", s.handlePublishItem).Methods(http.MethodPost)
	v1.HandleFunc("/items/{id}/view", s.handleRecordView).Methods(http.MethodPost)
	v1.HandleFunc("/items/{id}/contact", s.handleRecordContact).Methods(http.MethodPost)

	v1.HandleFunc("/users/{id}/items", s.handleListUserItems).Methods(http.MethodGet)

	v1.HandleFunc("/marketplace/rankings", s.handleRankings).Methods(http.MethodGet)
	v1.HandleFunc("/marketplace/profiles/{id}", s.handleGetProfile).Methods(http.MethodGet)
	v1.HandleFunc("/marketplace/profiles/{id}", s.handleDeactivateProfile).Methods(http.MethodDelete)
	v1.HandleFunc("/marketplace/profiles/{id}/readiness", s.handleUpdateReadiness).Methods(http.MethodPut)
	v1.HandleFunc("/marketplace/profiles/{id}/rebuild", s.handleRebuildProfile).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
