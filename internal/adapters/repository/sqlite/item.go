package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upskillhq/portfolio-engine/internal/adapters/repository"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

const itemColumns = `id, user_id, title, summary, type, mission_id, import_meta,
	skills, competencies, evidence, status, visibility, views, contacts,
	version, created_at, updated_at, approved_at, published_at`

func (s *Store) CreateItem(ctx context.Context, item *model.PortfolioItem) error {
	importMeta, err := model.EncodeImportMeta(item.Import)
	if err != nil {
		return err
	}
	skills, err := encodeJSON(item.Skills)
	if err != nil {
		return err
	}
	competencies, err := encodeJSON(item.Competencies)
	if err != nil {
		return err
	}
	evidence, err := encodeJSON(item.Evidence)
	if err != nil {
		return err
	}

	item.Version = 1
	_, err = s.db.ExecContext(ctx, `INSERT INTO portfolio_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Title, item.Summary, string(item.Type),
		item.MissionID, importMeta, skills, competencies, evidence,
		string(item.Status), string(item.Visibility), item.Views,
		item.EmployerContacts, item.Version, millis(item.CreatedAt),
		millis(item.UpdatedAt), nullMillis(item.ApprovedAt), nullMillis(item.PublishedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: item %s", repository.ErrAlreadyExists, item.ID)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.PortfolioItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM portfolio_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s", repository.ErrNotFound, id)
	}
	return item, err
}

func (s *Store) GetItemByMission(ctx context.Context, userID, missionID string) (*model.PortfolioItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM portfolio_items WHERE user_id = ? AND mission_id = ?`,
		userID, missionID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: mission %s for user %s", repository.ErrNotFound, missionID, userID)
	}
	return item, err
}

func (s *Store) ListItemsByUser(ctx context.Context, userID string) ([]model.PortfolioItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM portfolio_items WHERE user_id = ? ORDER BY created_at, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []model.PortfolioItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateItem(ctx context.Context, item *model.PortfolioItem) error {
	importMeta, err := model.EncodeImportMeta(item.Import)
	if err != nil {
		return err
	}
	skills, err := encodeJSON(item.Skills)
	if err != nil {
		return err
	}
	competencies, err := encodeJSON(item.Competencies)
	if err != nil {
		return err
	}
	evidence, err := encodeJSON(item.Evidence)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE portfolio_items SET
		title = ?, summary = ?, type = ?, import_meta = ?, skills = ?,
		competencies = ?, evidence = ?, status = ?, visibility = ?,
		views = ?, contacts = ?, version = version + 1, updated_at = ?,
		approved_at = ?, published_at = ?
		WHERE id = ? AND version = ?`,
		item.Title, item.Summary, string(item.Type), importMeta, skills,
		competencies, evidence, string(item.Status), string(item.Visibility),
		item.Views, item.EmployerContacts, millis(item.UpdatedAt),
		nullMillis(item.ApprovedAt), nullMillis(item.PublishedAt),
		item.ID, item.Version)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n == 0 {
		// Distinguish a stale version from a missing row.
		var exists int
		row := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM portfolio_items WHERE id = ?`, item.ID)
		if scanErr := row.Scan(&exists); errors.Is(scanErr, sql.ErrNoRows) {
			return fmt.Errorf("%w: item %s", repository.ErrNotFound, item.ID)
		}
		return fmt.Errorf("%w: item %s version %d", model.ErrConflict, item.ID, item.Version)
	}
	item.Version++
	return nil
}

// SetVisibilityForStatus runs inside one transaction so a failure leaves no
// partially synced visibility observable.
func (s *Store) SetVisibilityForStatus(ctx context.Context, userID string, status model.ItemStatus, vis model.Visibility) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin visibility sync: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE portfolio_items
		SET visibility = ?, version = version + 1
		WHERE user_id = ? AND status = ?`,
		string(vis), userID, string(status))
	if err != nil {
		return 0, fmt.Errorf("visibility sync: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("visibility sync: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit visibility sync: %w", err)
	}
	return int(n), nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.PortfolioItem, error) {
	var (
		item                  model.PortfolioItem
		typ, status, vis      string
		importMeta            string
		skills, comps, evid   string
		created, updated      int64
		approved, published   sql.NullInt64
	)
	err := row.Scan(&item.ID, &item.UserID, &item.Title, &item.Summary, &typ,
		&item.MissionID, &importMeta, &skills, &comps, &evid, &status, &vis,
		&item.Views, &item.EmployerContacts, &item.Version, &created,
		&updated, &approved, &published)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}

	item.Type = model.ItemType(typ)
	item.Status = model.ItemStatus(status)
	item.Visibility = model.Visibility(vis)
	item.CreatedAt = fromMillis(created)
	item.UpdatedAt = fromMillis(updated)
	item.ApprovedAt = fromNullMillis(approved)
	item.PublishedAt = fromNullMillis(published)

	if item.Import, err = model.DecodeImportMeta(importMeta); err != nil {
		return nil, err
	}
	if err := decodeJSON(skills, &item.Skills); err != nil {
		return nil, err
	}
	if err := decodeJSON(comps, &item.Competencies); err != nil {
		return nil, err
	}
	if err := decodeJSON(evid, &item.Evidence); err != nil {
		return nil, err
	}
	return &item, nil
}
