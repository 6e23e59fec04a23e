package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

// missionAckResponse acknowledges a mission-completion event.
type missionAckResponse struct {
	Status string               `json:"status"`
	Item   *model.PortfolioItem `json:"item,omitempty"`
}

// handleMissionCompleted handles POST /v1/events/mission-completed.
//
// The response distinguishes three acknowledgements: "created" when an item
// was auto-created, "duplicate" when the completion was already processed,
// and "skipped" when the score is below the auto-creation threshold.
func (s *Server) handleMissionCompleted(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}
	if err := validatePayload(r.Context(), missionCompletedSchema, body); err != nil {
		writeDomainError(w, err)
		return
	}

	var ev model.MissionCompleted
	if err := json.Unmarshal(body, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	item, created, err := s.deps.HandleMissionCompleted(r.Context(), ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	switch {
	case created:
		writeJSON(w, http.StatusCreated, missionAckResponse{Status: "created", Item: item})
	case item != nil:
		writeJSON(w, http.StatusOK, missionAckResponse{Status: "duplicate", Item: item})
	default:
		writeJSON(w, http.StatusOK, missionAckResponse{Status: "skipped"})
	}
}

// visibilityAckResponse acknowledges a visibility-change event.
type visibilityAckResponse struct {
	Status       string `json:"status"`
	ItemsUpdated int    `json:"items_updated"`
}

// handleVisibilityChanged handles POST /v1/events/visibility-changed.
func (s *Server) handleVisibilityChanged(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}
	if err := validatePayload(r.Context(), visibilityChangedSchema, body); err != nil {
		writeDomainError(w, err)
		return
	}

	var ev model.VisibilityChanged
	if err := json.Unmarshal(body, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	n, err := s.deps.SyncVisibility(r.Context(), ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, visibilityAckResponse{Status: "synced", ItemsUpdated: n})
}
