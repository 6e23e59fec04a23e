package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/domain/dedupe"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
	"github.com/upskillhq/portfolio-engine/internal/domain/skills"
	"github.com/upskillhq/portfolio-engine/pkg/logger"
	"github.com/upskillhq/portfolio-engine/pkg/metrics"
)

// HandleMissionCompleted applies the auto-creation rule to a mission
// completion. Scores below the creation threshold are acknowledged without
// effect. At or above it a draft item is created; at or above the approval
// threshold the item lands directly in approved. Processing is idempotent
// per {user, mission}: a replay returns the existing item with created
// false.
func (s *Service) HandleMissionCompleted(ctx context.Context, ev model.MissionCompleted) (*model.PortfolioItem, bool, error) {
	if err := ev.Validate(); err != nil {
		return nil, false, err
	}
	if ev.Score < s.autoCreateScore {
		s.logger.Debug(ctx, "mission below auto-create threshold",
			logger.String("mission_id", ev.MissionID),
			logger.Float64("score", ev.Score),
		)
		return nil, false, nil
	}

	key := dedupe.Key(ev.UserID, ev.MissionID)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordMissionDuplicate()
		return s.existingMissionItem(ctx, ev)
	}

	// The cache is bounded; the store stays the durable duplicate check.
	if item, err := s.store.GetItemByMission(ctx, ev.UserID, ev.MissionID); err == nil {
		metrics.RecordMissionDuplicate()
		return item, false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.deduper.Unrecord(ctx, key)
		return nil, false, err
	}

	now := s.now()
	item := &model.PortfolioItem{
		ID:         s.newID(),
		UserID:     ev.UserID,
		Title:      ev.Title,
		Type:       model.TypeMission,
		MissionID:  ev.MissionID,
		Skills:     skills.Extract(ev.Title, ev.Evidence, ev.Skills),
		Evidence:   ev.Evidence,
		Status:     model.StatusDraft,
		Visibility: model.VisibilityPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	approved := ev.Score >= s.autoApproveScore
	if approved {
		item.Status = model.StatusApproved
		item.ApprovedAt = &now
	}
	// The mission score carries over as the competency signal for every
	// extracted skill, on the 0-10 rubric scale.
	if len(item.Skills) > 0 {
		item.Competencies = make(map[string]float64, len(item.Skills))
		for _, skill := range item.Skills {
			item.Competencies[skill] = ev.Score / 10
		}
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// Lost a race with a concurrent replay.
			metrics.RecordMissionDuplicate()
			return s.existingMissionItem(ctx, ev)
		}
		s.deduper.Unrecord(ctx, key)
		return nil, false, err
	}

	metrics.RecordItemCreated(string(model.TypeMission))
	if approved {
		metrics.RecordItemApproved()
	}
	s.logger.Info(ctx, "portfolio item auto-created",
		logger.String("user_id", ev.UserID),
		logger.String("mission_id", ev.MissionID),
		logger.Float64("score", ev.Score),
		logger.Bool("auto_approved", approved),
	)

	s.notifyItemCreated(ctx, item)
	if approved {
		if _, err := s.RebuildProfile(ctx, ev.UserID, ""); err != nil {
			s.logger.Warn(ctx, "profile rebuild after auto-approval failed",
				logger.String("user_id", ev.UserID), logger.Error(err))
		}
	}
	return item, true, nil
}

// existingMissionItem resolves a duplicate completion to the item it
// originally produced. A cache hit without a stored item means the first
// attempt created nothing durable; the replay is still a no-op.
func (s *Service) existingMissionItem(ctx context.Context, ev model.MissionCompleted) (*model.PortfolioItem, bool, error) {
	item, err := s.store.GetItemByMission(ctx, ev.UserID, ev.MissionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item, false, nil
}

// SyncVisibility propagates a user's visibility preference to every item of
// theirs currently in approved status. The update is all-or-nothing: on a
// store failure no item was changed and the error wraps ErrSync.
func (s *Service) SyncVisibility(ctx context.Context, ev model.VisibilityChanged) (int, error) {
	if err := ev.Validate(); err != nil {
		return 0, err
	}

	n, err := s.store.SetVisibilityForStatus(ctx, ev.UserID, model.StatusApproved, ev.NewVisibility)
	if err != nil {
		metrics.RecordVisibilitySyncError()
		return 0, fmt.Errorf("%w: %v", ErrSync, err)
	}

	metrics.RecordVisibilitySync()
	s.logger.Info(ctx, "visibility synced",
		logger.String("user_id", ev.UserID),
		logger.String("visibility", string(ev.NewVisibility)),
		logger.Int("items", n),
	)
	return n, nil
}
