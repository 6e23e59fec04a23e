package service

import (
	"context"
	"errors"
	"time"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
	"github.com/upskillhq/portfolio-engine/internal/domain/ranking"
	"github.com/upskillhq/portfolio-engine/pkg/logger"
	"github.com/upskillhq/portfolio-engine/pkg/metrics"
)

// RebuildProfile recomputes the materialized marketplace profile from the
// user's item set. A profile is first materialized once portfolio health
// reaches the configured minimum; after that every rebuild updates it in
// place. Returns nil without error when the user is not yet
// marketplace-ready.
func (s *Service) RebuildProfile(ctx context.Context, userID, username string) (*model.MarketplaceProfile, error) {
	items, err := s.store.ListItemsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	agg, err := s.aggregateItems(ctx, items)
	if err != nil {
		return nil, err
	}

	if existing == nil && agg.health < s.healthMin {
		s.logger.Debug(ctx, "portfolio below marketplace threshold",
			logger.String("user_id", userID),
			logger.Float64("health", agg.health),
		)
		return nil, nil
	}

	now := s.now()
	profile := &model.MarketplaceProfile{
		UserID:          userID,
		Username:        username,
		PortfolioHealth: agg.health,
		TotalViews:      agg.views,
		ApprovedItems:   agg.approved,
		AvgCompetency:   agg.avgCompetency,
		FeaturedItemIDs: agg.featured,
		Skills:          agg.skills,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if existing != nil {
		if profile.Username == "" {
			profile.Username = existing.Username
		}
		profile.Headline = existing.Headline
		profile.Bio = existing.Bio
		profile.AvatarURL = existing.AvatarURL
		profile.ReadinessScore = existing.ReadinessScore
		profile.WeeklyRankDelta = existing.WeeklyRankDelta
		profile.Active = existing.Active
		profile.CreatedAt = existing.CreatedAt
	}
	if profile.Username == "" {
		profile.Username = userID
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	metrics.RecordProfileRebuilt()

	// Competency aggregates changed; push the fresh signal to the
	// analytics service, scaled to its 0-100 range.
	s.enqueue(ctx, model.Notification{
		ID:             s.newID(),
		Kind:           model.NotifyReadinessUpdate,
		UserID:         userID,
		ReadinessScore: agg.health * 10,
		At:             now,
	})
	return profile, nil
}

// itemAggregates is the per-user rollup a rebuild derives from the item set.
type itemAggregates struct {
	health        float64
	views         int64
	approved      int
	avgCompetency float64
	featured      []string
	skills        map[string]float64
}

// aggregateItems rolls the item set up into profile aggregates. Health is
// the mean quality of approved and published items, where quality is the
// latest review total or, absent any review, the mean competency signal.
func (s *Service) aggregateItems(ctx context.Context, items []model.PortfolioItem) (itemAggregates, error) {
	agg := itemAggregates{skills: make(map[string]float64)}
	skillCounts := make(map[string]int)

	var qualitySum float64
	var qualityCount int
	for i := range items {
		item := &items[i]
		agg.views += item.Views
		for skill, score := range item.Competencies {
			agg.skills[skill] += score
			skillCounts[skill]++
		}

		if item.Status != model.StatusApproved && item.Status != model.StatusPublished {
			continue
		}
		agg.approved++
		agg.featured = append(agg.featured, item.ID)

		quality, ok, err := s.itemQuality(ctx, item)
		if err != nil {
			return itemAggregates{}, err
		}
		if ok {
			qualitySum += quality
			qualityCount++
		}
	}

	for skill, sum := range agg.skills {
		agg.skills[skill] = sum / float64(skillCounts[skill])
	}
	var compSum float64
	for _, score := range agg.skills {
		compSum += score
	}
	if len(agg.skills) > 0 {
		agg.avgCompetency = compSum / float64(len(agg.skills))
	}

	if qualityCount > 0 {
		agg.health = qualitySum / float64(qualityCount)
	}
	if agg.health < 0 {
		agg.health = 0
	}
	if agg.health > 10 {
		agg.health = 10
	}
	return agg, nil
}

// itemQuality derives one item's 0-10 quality signal.
func (s *Service) itemQuality(ctx context.Context, item *model.PortfolioItem) (float64, bool, error) {
	reviews, err := s.store.ListReviewsByItem(ctx, item.ID)
	if err != nil {
		return 0, false, err
	}
	for i := len(reviews) - 1; i >= 0; i-- {
		if reviews[i].Status != model.ReviewPending {
			return reviews[i].Total, true, nil
		}
	}
	if len(item.Competencies) == 0 {
		return 0, false, nil
	}
	var sum float64
	for _, score := range item.Competencies {
		sum += score
	}
	return sum / float64(len(item.Competencies)), true, nil
}

// GetMarketplaceProfile returns the materialized profile for a user.
func (s *Service) GetMarketplaceProfile(ctx context.Context, userID string) (*model.MarketplaceProfile, error) {
	return s.store.GetProfile(ctx, userID)
}

// UpdateReadiness records an externally computed readiness score on a
// profile.
func (s *Service) UpdateReadiness(ctx context.Context, userID string, score float64) (*model.MarketplaceProfile, error) {
	if score < 0 || score > 100 {
		return nil, model.WrapValidation("readiness score outside [0,100]")
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.ReadinessScore = score
	profile.UpdatedAt = s.now()
	return profile, s.store.UpsertProfile(ctx, profile)
}

// DeactivateProfile hides a profile from ranking without deleting it.
func (s *Service) DeactivateProfile(ctx context.Context, userID string) error {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	profile.Active = false
	profile.UpdatedAt = s.now()
	return s.store.UpsertProfile(ctx, profile)
}

// Rankings computes the marketplace ordering over every active profile and
// returns at most limit entries. limit <= 0 returns the full ordering.
func (s *Service) Rankings(ctx context.Context, limit int) ([]ranking.Entry, error) {
	start := time.Now()

	profiles, err := s.store.ListActiveProfiles(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]ranking.ProfileStats, len(profiles))
	for i, p := range profiles {
		stats[i] = ranking.ProfileStats{
			UserID:          p.UserID,
			Username:        p.Username,
			ReadinessScore:  p.ReadinessScore,
			PortfolioHealth: p.PortfolioHealth,
			TotalViews:      p.TotalViews,
			ApprovedItems:   p.ApprovedItems,
			AvgCompetency:   p.AvgCompetency,
			CreatedAt:       p.CreatedAt,
		}
	}
	entries := ranking.Rank(stats, s.now())
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	metrics.RecordRankingRun(len(profiles), float64(time.Since(start).Milliseconds()))
	return entries, nil
}
