package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

const reviewColumns = `id, item_id, reviewer_id, reviewer_name,
	criterion_scores, total, comments, status, created_at, updated_at`

func (s *Store) CreateReview(ctx context.Context, review *model.PortfolioReview) error {
	scores, err := encodeJSON(review.CriterionScores)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO portfolio_reviews (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.ItemID, review.ReviewerID, review.ReviewerName,
		scores, review.Total, review.Comments, string(review.Status),
		millis(review.CreatedAt), millis(review.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: review %s", repository.ErrAlreadyExists, review.ID)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (s *Store) GetReview(ctx context.Context, id string) (*model.PortfolioReview, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM portfolio_reviews WHERE id = ?`, id)
	review, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: review %s", repository.ErrNotFound, id)
	}
	return review, err
}

func (s *Store) ListReviewsByItem(ctx context.Context, itemID string) ([]model.PortfolioReview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM portfolio_reviews WHERE item_id = ? ORDER BY created_at, id`,
		itemID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []model.PortfolioReview
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateReview(ctx context.Context, review *model.PortfolioReview) error {
	scores, err := encodeJSON(review.CriterionScores)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE portfolio_reviews SET
		criterion_scores = ?, total = ?, comments = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		scores, review.Total, review.Comments, string(review.Status),
		millis(review.UpdatedAt), review.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: review %s", repository.ErrNotFound, review.ID)
	}
	return nil
}

func scanReview(row rowScanner) (*model.PortfolioReview, error) {
	var (
		review           model.PortfolioReview
		scores, status   string
		created, updated int64
	)
	err := row.Scan(&review.ID, &review.ItemID, &review.ReviewerID,
		&review.ReviewerName, &scores, &review.Total, &review.Comments,
		&status, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	review.Status = model.ReviewStatus(status)
	review.CreatedAt = fromMillis(created)
	review.UpdatedAt = fromMillis(updated)
	if err := decodeJSON(scores, &review.CriterionScores); err != nil {
		return nil, err
	}
	return &review, nil
}
