package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/upskillhq/portfolio-engine/internal/domain/ranking"
)

// handleRankings handles GET /v1/marketplace/rankings?limit=N.
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "validation_error",
				ErrBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.deps.Rankings(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []ranking.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetProfile handles GET /v1/marketplace/profiles/{id}.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.deps.GetMarketplaceProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type readinessRequest struct {
	Score float64 `json:"score"`
}

// handleUpdateReadiness handles PUT /v1/marketplace/profiles/{id}/readiness.
func (s *Server) handleUpdateReadiness(w http.ResponseWriter, r *http.Request) {
	var req readinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	profile, err := s.deps.UpdateReadiness(r.Context(), mux.Vars(r)["id"], req.Score)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleDeactivateProfile handles DELETE /v1/marketplace/profiles/{id}.
func (s *Server) handleDeactivateProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeactivateProfile(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rebuildRequest struct {
	Username string `json:"username"`
}

// handleRebuildProfile handles POST /v1/marketplace/profiles/{id}/rebuild.
func (s *Server) handleRebuildProfile(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if r.Body != nil {
		// The body is optional; decode errors on an empty body are ignored.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	profile, err := s.deps.RebuildProfile(r.Context(), mux.Vars(r)["id"], req.Username)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if profile == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "below_marketplace_threshold",
		})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
