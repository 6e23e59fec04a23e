package service

import (
	"context"
	"errors"
	"strings"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/domain/lifecycle"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
	"github.com/upskillhq/portfolio-engine/internal/domain/rubric"
	"github.com/upskillhq/portfolio-engine/internal/domain/skills"
	"github.com/upskillhq/portfolio-engine/pkg/logger"
	"github.com/upskillhq/portfolio-engine/pkg/metrics"
)

// CreateItemInput carries a manual item creation request.
type CreateItemInput struct {
	UserID     string
	Title      string
	Summary    string
	Type       model.ItemType
	Skills     []string
	Evidence   []model.EvidenceFile
	Visibility model.Visibility
	Import     model.ImportMeta
}

// CreateItem creates a draft item owned by the caller. Skills are merged
// from the explicit list, the title and summary text, and the evidence
// files.
func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (*model.PortfolioItem, error) {
	now := s.now()
	item := &model.PortfolioItem{
		ID:         s.newID(),
		UserID:     in.UserID,
		Title:      strings.TrimSpace(in.Title),
		Summary:    strings.TrimSpace(in.Summary),
		Type:       in.Type,
		Import:     in.Import,
		Skills:     skills.Extract(in.Title+"\n"+in.Summary, in.Evidence, in.Skills),
		Evidence:   in.Evidence,
		Status:     model.StatusDraft,
		Visibility: in.Visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if item.Visibility == "" {
		item.Visibility = model.VisibilityPrivate
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	metrics.RecordItemCreated(string(item.Type))
	s.notifyItemCreated(ctx, item)
	return item, nil
}

// ImportInput carries an external-provider import request.
type ImportInput struct {
	UserID   string
	Title    string
	Summary  string
	Meta     model.ImportMeta
	Skills   []string
	Evidence []model.EvidenceFile
}

// ImportItem creates a draft item from external provider data. The item
// type and extra skill signals follow the concrete provenance variant.
func (s *Service) ImportItem(ctx context.Context, in ImportInput) (*model.PortfolioItem, error) {
	if in.Meta == nil {
		return nil, model.WrapValidation("missing import metadata")
	}

	itemType := model.TypeExternal
	extra := in.Skills
	switch meta := in.Meta.(type) {
	case model.GitHubImport:
		itemType = model.TypeGitHub
		if meta.Language != "" {
			extra = append(append([]string(nil), extra...), meta.Language)
		}
	case model.TryHackMeImport:
		itemType = model.TypeTryHackMe
	}

	return s.CreateItem(ctx, CreateItemInput{
		UserID:   in.UserID,
		Title:    in.Title,
		Summary:  in.Summary,
		Type:     itemType,
		Skills:   extra,
		Evidence: in.Evidence,
		Import:   in.Meta,
	})
}

// GetItem returns a single item by id.
func (s *Service) GetItem(ctx context.Context, id string) (*model.PortfolioItem, error) {
	return s.store.GetItem(ctx, id)
}

// ListUserItems returns a user's items ordered by creation time.
func (s *Service) ListUserItems(ctx context.Context, userID string) ([]model.PortfolioItem, error) {
	return s.store.ListItemsByUser(ctx, userID)
}

// UpdateItemInput carries a partial content update. Nil pointer fields are
// left unchanged; Version must match the stored version.
type UpdateItemInput struct {
	ItemID  string
	UserID  string
	Version int64

	Title    *string
	Summary  *string
	Skills   []string
	Evidence []model.EvidenceFile
}

// UpdateItemContent edits an item's content. Only draft and
// changes_requested items are editable: items under review fail with
// model.ErrConflict, terminal states with lifecycle.ErrInvalidTransition.
func (s *Service) UpdateItemContent(ctx context.Context, in UpdateItemInput) (*model.PortfolioItem, error) {
	item, err := s.ownedItem(ctx, in.ItemID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckEditable(item.Status); err != nil {
		return nil, err
	}

	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.Summary != nil {
		item.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.Evidence != nil {
		item.Evidence = in.Evidence
	}
	if in.Skills != nil {
		item.Skills = skills.Extract(item.Title+"\n"+item.Summary, item.Evidence, in.Skills)
	}
	if in.Version != 0 {
		item.Version = in.Version
	}
	item.UpdatedAt = s.now()

	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// SubmitItem moves a draft or changes_requested item into the review queue.
func (s *Service) SubmitItem(ctx context.Context, itemID, userID string) (*model.PortfolioItem, error) {
	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Advance(item, model.StatusSubmitted, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// StartReview claims a submitted item for a reviewer and opens a pending
// review record.
func (s *Service) StartReview(ctx context.Context, itemID, reviewerID, reviewerName string) (*model.PortfolioReview, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, model.WrapValidation("missing reviewer id")
	}
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.Advance(item, model.StatusInReview, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	now := s.now()
	review := &model.PortfolioReview{
		ID:           s.newID(),
		ItemID:       item.ID,
		ReviewerID:   reviewerID,
		ReviewerName: reviewerName,
		Status:       model.ReviewPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := review.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ReviewInput carries a reviewer's scored decision.
type ReviewInput struct {
	ItemID     string
	ReviewerID string

	// CriterionScores maps rubric criterion ids to 0-10 scores. Scores are
	// clamped before aggregation.
	CriterionScores map[string]float64
	Comments        string
}

// RecordReview scores an in-review item against its rubric and applies the
// decision: a weighted total at or above the publish threshold approves the
// item, anything lower sends it back with changes requested. The owner's
// marketplace profile is rebuilt and a readiness update is queued.
func (s *Service) RecordReview(ctx context.Context, in ReviewInput) (*model.PortfolioReview, error) {
	item, err := s.store.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	// Published items keep their review history frozen.
	if item.Status == model.StatusPublished {
		return nil, model.WrapValidation("reviews are closed once the item is published")
	}

	r, ok := rubric.ForType(item.Type)
	if !ok {
		return nil, model.WrapValidation("no rubric for item type " + string(item.Type))
	}
	if len(in.CriterionScores) == 0 {
		return nil, model.WrapValidation("missing criterion scores")
	}
	scores := make(map[string]float64, len(in.CriterionScores))
	for id, raw := range in.CriterionScores {
		scores[id] = rubric.Clamp(raw)
	}
	total := rubric.Score(r, scores)

	decision := model.ReviewChangesRequested
	next := model.StatusChangesRequested
	if total >= s.publishScore {
		decision = model.ReviewApproved
		next = model.StatusApproved
	}
	if err := lifecycle.Advance(item, next, s.now()); err != nil {
		return nil, err
	}

	// Criterion scores become the item's competency signals.
	if item.Competencies == nil {
		item.Competencies = make(map[string]float64, len(scores))
	}
	for id, score := range scores {
		item.Competencies[id] = score
	}
	item.UpdatedAt = s.now()
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	review, err := s.resolveReview(ctx, item.ID, in.ReviewerID)
	if err != nil {
		return nil, err
	}
	review.CriterionScores = scores
	review.Total = total
	review.Comments = in.Comments
	review.Status = decision
	review.UpdatedAt = s.now()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = review.UpdatedAt
		if err := s.store.CreateReview(ctx, review); err != nil {
			return nil, err
		}
	} else if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, err
	}

	metrics.RecordReview(string(decision))
	if decision == model.ReviewApproved {
		metrics.RecordItemApproved()
	}
	s.logger.Info(ctx, "review recorded",
		logger.String("item_id", item.ID),
		logger.String("decision", string(decision)),
		logger.Float64("total", total),
	)

	if _, err := s.RebuildProfile(ctx, item.UserID, ""); err != nil {
		s.logger.Warn(ctx, "profile rebuild after review failed",
			logger.String("user_id", item.UserID), logger.Error(err))
	}
	return review, nil
}

// resolveReview finds the reviewer's pending review for the item, or
// prepares a fresh record when the review was filed without StartReview.
func (s *Service) resolveReview(ctx context.Context, itemID, reviewerID string) (*model.PortfolioReview, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, model.WrapValidation("missing reviewer id")
	}
	reviews, err := s.store.ListReviewsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	for i := len(reviews) - 1; i >= 0; i-- {
		if reviews[i].ReviewerID == reviewerID && reviews[i].Status == model.ReviewPending {
			r := reviews[i]
			return &r, nil
		}
	}
	return &model.PortfolioReview{
		ID:         s.newID(),
		ItemID:     itemID,
		ReviewerID: reviewerID,
	}, nil
}

// ListItemReviews returns an item's review history.
func (s *Service) ListItemReviews(ctx context.Context, itemID string) ([]model.PortfolioReview, error) {
	return s.store.ListReviewsByItem(ctx, itemID)
}

// PublishItem promotes an approved item to published. An empty visibility
// leaves a non-private setting alone and lifts private to public.
func (s *Service) PublishItem(ctx context.Context, itemID, userID string, vis model.Visibility) (*model.PortfolioItem, error) {
	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if vis != "" && !vis.Valid() {
		return nil, model.WrapValidation("unknown visibility " + string(vis))
	}
	if err := lifecycle.Advance(item, model.StatusPublished, s.now()); err != nil {
		return nil, err
	}
	switch {
	case vis != "":
		item.Visibility = vis
	case item.Visibility == model.VisibilityPrivate:
		item.Visibility = model.VisibilityPublic
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	metrics.RecordItemPublished()

	if _, err := s.RebuildProfile(ctx, item.UserID, ""); err != nil {
		s.logger.Warn(ctx, "profile rebuild after publish failed",
			logger.String("user_id", item.UserID), logger.Error(err))
	}
	return item, nil
}

// RecordItemView bumps an item's view counter and mirrors the increment on
// the owner's profile when one exists.
func (s *Service) RecordItemView(ctx context.Context, itemID string) error {
	item, err := s.bumpCounter(ctx, itemID, func(it *model.PortfolioItem) {
		it.Views++
	})
	if err != nil {
		return err
	}

	profile, err := s.store.GetProfile(ctx, item.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	profile.TotalViews++
	profile.UpdatedAt = s.now()
	return s.store.UpsertProfile(ctx, profile)
}

// RecordEmployerContact bumps an item's employer-contact counter.
func (s *Service) RecordEmployerContact(ctx context.Context, itemID string) error {
	_, err := s.bumpCounter(ctx, itemID, func(it *model.PortfolioItem) {
		it.EmployerContacts++
	})
	return err
}

// bumpCounter applies a counter mutation with a bounded retry on version
// conflicts. Telemetry writes race freely with content edits.
func (s *Service) bumpCounter(ctx context.Context, itemID string, mutate func(*model.PortfolioItem)) (*model.PortfolioItem, error) {
	const attempts = 3

	var lastErr error
	for i := 0; i < attempts; i++ {
		item, err := s.store.GetItem(ctx, itemID)
		if err != nil {
			return nil, err
		}
		mutate(item)
		item.UpdatedAt = s.now()
		if err := s.store.UpdateItem(ctx, item); err != nil {
			if errors.Is(err, model.ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return item, nil
	}
	return nil, lastErr
}

// ownedItem loads an item and verifies ownership. A foreign item reads as
// not found rather than leaking its existence.
func (s *Service) ownedItem(ctx context.Context, itemID, userID string) (*model.PortfolioItem, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if userID != "" && item.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return item, nil
}

// notifyItemCreated queues an item-created notification for the user's
// mentors.
func (s *Service) notifyItemCreated(ctx context.Context, item *model.PortfolioItem) {
	s.enqueue(ctx, model.Notification{
		ID:        s.newID(),
		Kind:      model.NotifyItemCreated,
		UserID:    item.UserID,
		ItemID:    item.ID,
		ItemTitle: item.Title,
		At:        s.now(),
	})
}
