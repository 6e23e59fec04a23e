package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/upskillhq/portfolio-engine/internal/domain/dedupe"
	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

// MemStore is the in-memory Store implementation used for tests and
// single-process runs. All methods are safe for concurrent use; writes are
// serialized under one lock, which also makes SetVisibilityForStatus
// naturally all-or-nothing.
type MemStore struct {
	mu sync.RWMutex

	items     map[string]*model.PortfolioItem
	itemOrder []string
	byMission map[string]string // dedupe.Key -> item id

	reviews     map[string]*model.PortfolioReview
	reviewOrder map[string][]string // item id -> review ids

	profiles     map[string]*model.MarketplaceProfile
	profileOrder []string
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		items:       make(map[string]*model.PortfolioItem),
		byMission:   make(map[string]string),
		reviews:     make(map[string]*model.PortfolioReview),
		reviewOrder: make(map[string][]string),
		profiles:    make(map[string]*model.MarketplaceProfile),
	}
}

func cloneItem(p *model.PortfolioItem) *model.PortfolioItem {
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	c.Evidence = append([]model.EvidenceFile(nil), p.Evidence...)
	if p.Competencies != nil {
		c.Competencies = make(map[string]float64, len(p.Competencies))
		for k, v := range p.Competencies {
			c.Competencies[k] = v
		}
	}
	if p.ApprovedAt != nil {
		ts := *p.ApprovedAt
		c.ApprovedAt = &ts
	}
	if p.PublishedAt != nil {
		ts := *p.PublishedAt
		c.PublishedAt = &ts
	}
	return &c
}

func cloneReview(r *model.PortfolioReview) *model.PortfolioReview {
	c := *r
	if r.CriterionScores != nil {
		c.CriterionScores = make(map[string]float64, len(r.CriterionScores))
		for k, v := range r.CriterionScores {
			c.CriterionScores[k] = v
		}
	}
	return &c
}

func cloneProfile(p *model.MarketplaceProfile) *model.MarketplaceProfile {
	c := *p
	c.FeaturedItemIDs = append([]string(nil), p.FeaturedItemIDs...)
	if p.Skills != nil {
		c.Skills = make(map[string]float64, len(p.Skills))
		for k, v := range p.Skills {
			c.Skills[k] = v
		}
	}
	return &c
}

// CreateItem stores a new item. The stored version starts at 1.
func (s *MemStore) CreateItem(ctx context.Context, item *model.PortfolioItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; ok {
		return fmt.Errorf("%w: item %s", ErrAlreadyExists, item.ID)
	}
	if item.MissionID != "" {
		key := dedupe.Key(item.UserID, item.MissionID)
		if _, ok := s.byMission[key]; ok {
			return fmt.Errorf("%w: mission %s for user %s", ErrAlreadyExists, item.MissionID, item.UserID)
		}
		s.byMission[key] = item.ID
	}

	item.Version = 1
	s.items[item.ID] = cloneItem(item)
	s.itemOrder = append(s.itemOrder, item.ID)
	return nil
}

func (s *MemStore) GetItem(ctx context.Context, id string) (*model.PortfolioItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, id)
	}
	return cloneItem(item), nil
}

func (s *MemStore) GetItemByMission(ctx context.Context, userID, missionID string) (*model.PortfolioItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byMission[dedupe.Key(userID, missionID)]
	if !ok {
		return nil, fmt.Errorf("%w: mission %s for user %s", ErrNotFound, missionID, userID)
	}
	return cloneItem(s.items[id]), nil
}

func (s *MemStore) ListItemsByUser(ctx context.Context, userID string) ([]model.PortfolioItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PortfolioItem
	for _, id := range s.itemOrder {
		if item := s.items[id]; item.UserID == userID {
			out = append(out, *cloneItem(item))
		}
	}
	return out, nil
}

// UpdateItem applies an optimistic update keyed on item.Version.
func (s *MemStore) UpdateItem(ctx context.Context, item *model.PortfolioItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[item.ID]
	if !ok {
		return fmt.Errorf("%w: item %s", ErrNotFound, item.ID)
	}
	if stored.Version != item.Version {
		return fmt.Errorf("%w: item %s version %d (stored %d)",
			model.ErrConflict, item.ID, item.Version, stored.Version)
	}

	item.Version++
	s.items[item.ID] = cloneItem(item)
	return nil
}

// SetVisibilityForStatus updates matching items under one lock, so the
// change is observable either fully or not at all.
func (s *MemStore) SetVisibilityForStatus(ctx context.Context, userID string, status model.ItemStatus, vis model.Visibility) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, id := range s.itemOrder {
		item := s.items[id]
		if item.UserID == userID && item.Status == status {
			item.Visibility = vis
			item.Version++
			count++
		}
	}
	return count, nil
}

func (s *MemStore) CreateReview(ctx context.Context, review *model.PortfolioReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[review.ID]; ok {
		return fmt.Errorf("%w: review %s", ErrAlreadyExists, review.ID)
	}
	s.reviews[review.ID] = cloneReview(review)
	s.reviewOrder[review.ItemID] = append(s.reviewOrder[review.ItemID], review.ID)
	return nil
}

func (s *MemStore) GetReview(ctx context.Context, id string) (*model.PortfolioReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	review, ok := s.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %s", ErrNotFound, id)
	}
	return cloneReview(review), nil
}

func (s *MemStore) ListReviewsByItem(ctx context.Context, itemID string) ([]model.PortfolioReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PortfolioReview
	for _, id := range s.reviewOrder[itemID] {
		out = append(out, *cloneReview(s.reviews[id]))
	}
	return out, nil
}

func (s *MemStore) UpdateReview(ctx context.Context, review *model.PortfolioReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[review.ID]; !ok {
		return fmt.Errorf("%w: review %s", ErrNotFound, review.ID)
	}
	s.reviews[review.ID] = cloneReview(review)
	return nil
}

func (s *MemStore) UpsertProfile(ctx context.Context, profile *model.MarketplaceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.UserID]; !ok {
		s.profileOrder = append(s.profileOrder, profile.UserID)
	}
	s.profiles[profile.UserID] = cloneProfile(profile)
	return nil
}

func (s *MemStore) GetProfile(ctx context.Context, userID string) (*model.MarketplaceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}
	return cloneProfile(profile), nil
}

func (s *MemStore) ListActiveProfiles(ctx context.Context) ([]model.MarketplaceProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.MarketplaceProfile
	for _, id := range s.profileOrder {
		if p := s.profiles[id]; p.Active {
			out = append(out, *cloneProfile(p))
		}
	}
	return out, nil
}
