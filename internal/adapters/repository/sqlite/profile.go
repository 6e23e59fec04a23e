package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

const profileColumns = `user_id, username, headline, bio, avatar_url,
	readiness_score, portfolio_health, total_views, weekly_delta,
	approved_items, avg_competency,
	featured_items, skills, active, created_at, updated_at`

func (s *Store) UpsertProfile(ctx context.Context, profile *model.MarketplaceProfile) error {
	featured, err := encodeJSON(profile.FeaturedItemIDs)
	if err != nil {
		return err
	}
	skills, err := encodeJSON(profile.Skills)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO marketplace_profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			headline = excluded.headline,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			readiness_score = excluded.readiness_score,
			portfolio_health = excluded.portfolio_health,
			total_views = excluded.total_views,
			weekly_delta = excluded.weekly_delta,
			approved_items = excluded.approved_items,
			avg_competency = excluded.avg_competency,
			featured_items = excluded.featured_items,
			skills = excluded.skills,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		profile.UserID, profile.Username, profile.Headline, profile.Bio,
		profile.AvatarURL, profile.ReadinessScore, profile.PortfolioHealth,
		profile.TotalViews, profile.WeeklyRankDelta,
		profile.ApprovedItems, profile.AvgCompetency, featured, skills,
		boolInt(profile.Active), millis(profile.CreatedAt), millis(profile.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*model.MarketplaceProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM marketplace_profiles WHERE user_id = ?`, userID)
	profile, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %s", repository.ErrNotFound, userID)
	}
	return profile, err
}

func (s *Store) ListActiveProfiles(ctx context.Context) ([]model.MarketplaceProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM marketplace_profiles WHERE active = 1
		 ORDER BY created_at, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []model.MarketplaceProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanProfile(row rowScanner) (*model.MarketplaceProfile, error) {
	var (
		profile          model.MarketplaceProfile
		featured, skills string
		active           int
		created, updated int64
	)
	err := row.Scan(&profile.UserID, &profile.Username, &profile.Headline,
		&profile.Bio, &profile.AvatarURL, &profile.ReadinessScore,
		&profile.PortfolioHealth, &profile.TotalViews, &profile.WeeklyRankDelta,
		&profile.ApprovedItems, &profile.AvgCompetency,
		&featured, &skills, &active, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	profile.Active = active != 0
	profile.CreatedAt = fromMillis(created)
	profile.UpdatedAt = fromMillis(updated)
	if err := decodeJSON(featured, &profile.FeaturedItemIDs); err != nil {
		return nil, err
	}
	if err := decodeJSON(skills, &profile.Skills); err != nil {
		return nil, err
	}
	return &profile, nil
}
