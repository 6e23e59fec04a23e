// Package repository defines the persistence contracts for portfolio
// entities and their errors.
//
// Implementations must serialize writers per entity: an update carrying a
// stale version fails with model.ErrConflict instead of silently
// overwriting.
package repository

import (
	"context"

	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

// ItemStore provides CRUD access to portfolio items.
type ItemStore interface {
	CreateItem(ctx context.Context, item *model.PortfolioItem) error

	// GetItem returns ErrNotFound for unknown ids.
	GetItem(ctx context.Context, id string) (*model.PortfolioItem, error)

	// GetItemByMission looks an item up by its dedupe identity. Returns
	// ErrNotFound when no item was created for the mission.
	GetItemByMission(ctx context.Context, userID, missionID string) (*model.PortfolioItem, error)

	// ListItemsByUser returns the user's items ordered by creation time.
	ListItemsByUser(ctx context.Context, userID string) ([]model.PortfolioItem, error)

	// UpdateItem applies an optimistic update. item.Version must equal the
	// stored version; on success the stored version is incremented and
	// reflected back on item. A stale version fails with model.ErrConflict.
	UpdateItem(ctx context.Context, item *model.PortfolioItem) error

	// SetVisibilityForStatus sets the visibility of every item owned by
	// userID whose status equals status, atomically. Either every matching
	// item is updated or none is. Returns the number of items updated.
	SetVisibilityForStatus(ctx context.Context, userID string, status model.ItemStatus, vis model.Visibility) (int, error)
}

// ReviewStore provides CRUD access to portfolio reviews.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *model.PortfolioReview) error
	GetReview(ctx context.Context, id string) (*model.PortfolioReview, error)

	// ListReviewsByItem returns an item's reviews ordered by creation time.
	ListReviewsByItem(ctx context.Context, itemID string) ([]model.PortfolioReview, error)

	UpdateReview(ctx context.Context, review *model.PortfolioReview) error
}

// ProfileStore provides access to the materialized marketplace profiles.
type ProfileStore interface {
	// UpsertProfile creates or replaces the profile for its user id.
	UpsertProfile(ctx context.Context, profile *model.MarketplaceProfile) error

	GetProfile(ctx context.Context, userID string) (*model.MarketplaceProfile, error)

	// ListActiveProfiles returns every active profile, ordered by creation
	// time for deterministic ranking input.
	ListActiveProfiles(ctx context.Context) ([]model.MarketplaceProfile, error)
}

// Store bundles every persistence contract behind one dependency.
type Store interface {
	ItemStore
	ReviewStore
	ProfileStore
}
