package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	service "github.com/upskillhq/portfolio-engine/internal/app"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

type createItemRequest struct {
	UserID     string               `json:"user_id"`
	Title      string               `json:"title"`
	Summary    string               `json:"summary"`
	Type       model.ItemType       `json:"type"`
	Skills     []string             `json:"skills"`
	Evidence   []model.EvidenceFile `json:"evidence"`
	Visibility model.Visibility     `json:"visibility"`
}

// handleCreateItem handles POST /v1/items.
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	item, err := s.deps.CreateItem(r.Context(), service.CreateItemInput{
		UserID:     req.UserID,
		Title:      req.Title,
		Summary:    req.Summary,
		Type:       req.Type,
		Skills:     req.Skills,
		Evidence:   req.Evidence,
		Visibility: req.Visibility,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type importItemRequest struct {
	UserID   string               `json:"user_id"`
	Title    string               `json:"title"`
	Summary  string               `json:"summary"`
	Skills   []string             `json:"skills"`
	Evidence []model.EvidenceFile `json:"evidence"`

	// Import is the provider envelope: {"provider": ..., "data": {...}}.
	Import json.RawMessage `json:"import"`
}

// handleImportItem handles POST /v1/items/import.
func (s *Server) handleImportItem(w http.ResponseWriter, r *http.Request) {
	var req importItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}
	meta, err := model.DecodeImportMeta(string(req.Import))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	item, err := s.deps.ImportItem(r.Context(), service.ImportInput{
		UserID:   req.UserID,
		Title:    req.Title,
		Summary:  req.Summary,
		Meta:     meta,
		Skills:   req.Skills,
		Evidence: req.Evidence,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleGetItem handles GET /v1/items/{id}.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleListUserItems handles GET /v1/users/{id}/items.
func (s *Server) handleListUserItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.ListUserItems(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []model.PortfolioItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

type updateItemRequest struct {
	UserID  string `json:"user_id"`
	Version int64  `json:"version"`

	Title    *string              `json:"title"`
	Summary  *string              `json:"summary"`
	Skills   []string             `json:"skills"`
	Evidence []model.EvidenceFile `json:"evidence"`
}

// handleUpdateItem handles PATCH /v1/items/{id}.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	item, err := s.deps.UpdateItemContent(r.Context(), service.UpdateItemInput{
		ItemID:   mux.Vars(r)["id"],
		UserID:   req.UserID,
		Version:  req.Version,
		Title:    req.Title,
		Summary:  req.Summary,
		Skills:   req.Skills,
		Evidence: req.Evidence,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type ownerRequest struct {
	UserID string `json:"user_id"`
}

// handleSubmitItem handles POST /v1/items/{id}/submit.
func (s *Server) handleSubmitItem(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	item, err := s.deps.SubmitItem(r.Context(), mux.Vars(r)["id"], req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type startReviewRequest struct {
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name"`
}

// handleStartReview handles POST /v1/items/{id}/review/start.
func (s *Server) handleStartReview(w http.ResponseWriter, r *http.Request) {
	var req startReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	review, err := s.deps.StartReview(r.Context(), mux.Vars(r)["id"],
		req.ReviewerID, req.ReviewerName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

type recordReviewRequest struct {
	ReviewerID      string             `json:"reviewer_id"`
	CriterionScores map[string]float64 `json:"criterion_scores"`
	Comments        string             `json:"comments"`
}

// handleRecordReview handles POST /v1/items/{id}/review.
func (s *Server) handleRecordReview(w http.ResponseWriter, r *http.Request) {
	var req recordReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	review, err := s.deps.RecordReview(r.Context(), service.ReviewInput{
		ItemID:          mux.Vars(r)["id"],
		ReviewerID:      req.ReviewerID,
		CriterionScores: req.CriterionScores,
		Comments:        req.Comments,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// handleListReviews handles GET /v1/items/{id}/reviews.
func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.deps.ListItemReviews(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if reviews == nil {
		reviews = []model.PortfolioReview{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

type publishItemRequest struct {
	UserID     string           `json:"user_id"`
	Visibility model.Visibility `json:"visibility"`
}

// handlePublishItem handles POST /v1/items/{id}/publish.
func (s *Server) handlePublishItem(w http.ResponseWriter, r *http.Request) {
	var req publishItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}

	item, err := s.deps.PublishItem(r.Context(), mux.Vars(r)["id"],
		req.UserID, req.Visibility)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleRecordView handles POST /v1/items/{id}/view.
func (s *Server) handleRecordView(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.RecordItemView(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordContact handles POST /v1/items/{id}/contact.
func (s *Server) handleRecordContact(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.RecordEmployerContact(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
