// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// ItemType classifies where a portfolio item came from.
type ItemType string

// Supported portfolio item types.
const (
	TypeMission         ItemType = "mission"
	TypeReflection      ItemType = "reflection"
	TypeCertification   ItemType = "certification"
	TypeGitHub          ItemType = "github"
	TypeTryHackMe       ItemType = "tryhackme"
	TypeExternal        ItemType = "external"
	TypeMarketplaceWork ItemType = "marketplace-work"
)

// Valid reports whether t is one of the supported item types.
func (t ItemType) Valid() bool {
	switch t {
	case TypeMission, TypeReflection, TypeCertification, TypeGitHub,
		TypeTryHackMe, TypeExternal, TypeMarketplaceWork:
		return true
	}
	return false
}

// ItemStatus is the workflow state of a portfolio item.
type ItemStatus string

// Workflow states, in rough lifecycle order.
const (
	StatusDraft            ItemStatus = "draft"
	StatusSubmitted        ItemStatus = "submitted"
	StatusInReview         ItemStatus = "in_review"
	StatusChangesRequested ItemStatus = "changes_requested"
	StatusApproved         ItemStatus = "approved"
	StatusPublished        ItemStatus = "published"
)

// Visibility controls who can see a portfolio item.
type Visibility string

// Visibility levels from most to least restricted.
const (
	VisibilityPrivate            Visibility = "private"
	VisibilityUnlisted           Visibility = "unlisted"
	VisibilityMarketplacePreview Visibility = "marketplace_preview"
	VisibilityPublic             Visibility = "public"
)

// Valid reports whether v is a known visibility level.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityMarketplacePreview, VisibilityPublic:
		return true
	}
	return false
}

// EvidenceFile is a single attachment backing a portfolio item.
type EvidenceFile struct {
	URL       string `json:"url"`
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Size      int64  `json:"size,omitempty"`
}

// PortfolioItem is a single unit of evidenced learner work.
type PortfolioItem struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	Title   string   `json:"title"`
	Summary string   `json:"summary,omitempty"`
	Type    ItemType `json:"type"`

	// Provenance. MissionID is set for mission-derived items; Import is
	// set for items created by an external importer.
	MissionID string     `json:"mission_id,omitempty"`
	Import    ImportMeta `json:"-"`

	Skills       []string           `json:"skills,omitempty"`
	Competencies map[string]float64 `json:"competencies,omitempty"`
	Evidence     []EvidenceFile     `json:"evidence,omitempty"`

	Status     ItemStatus `json:"status"`
	Visibility Visibility `json:"visibility"`

	// Monotonic marketplace telemetry counters.
	Views            int64 `json:"views"`
	EmployerContacts int64 `json:"employer_contacts"`

	// Version backs the optimistic concurrency check in the stores.
	Version int64 `json:"version"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Validate checks the structural invariants of an item before it is
// persisted. It never mutates the item.
func (p *PortfolioItem) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return WrapValidation("missing item id")
	case strings.TrimSpace(p.UserID) == "":
		return WrapValidation("missing user id")
	case strings.TrimSpace(p.Title) == "":
		return WrapValidation("missing title")
	case !p.Type.Valid():
		return WrapValidation("unknown item type " + string(p.Type))
	case p.Visibility != "" && !p.Visibility.Valid():
		return WrapValidation("unknown visibility " + string(p.Visibility))
	}
	// Public visibility is only legal once the item has cleared review.
	if p.Visibility == VisibilityPublic &&
		p.Status != StatusApproved && p.Status != StatusPublished {
		return WrapValidation("visibility public requires approved or published status")
	}
	if p.PublishedAt != nil && p.ApprovedAt == nil {
		return WrapValidation("published item missing approval timestamp")
	}
	return nil
}

// ReviewStatus is the reviewer's decision state for a review record.
type ReviewStatus string

// Review decision states.
const (
	ReviewPending          ReviewStatus = "pending"
	ReviewApproved         ReviewStatus = "approved"
	ReviewChangesRequested ReviewStatus = "changes_requested"
)

// PortfolioReview is one reviewer's scored feedback on an item.
// Reviews become append-only audit history once the item is published.
type PortfolioReview struct {
	ID           string `json:"id"`
	ItemID       string `json:"item_id"`
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name,omitempty"`

	// CriterionScores maps rubric criterion ids to raw 0-10 scores.
	CriterionScores map[string]float64 `json:"criterion_scores,omitempty"`
	Total           float64            `json:"total"`
	Comments        string             `json:"comments,omitempty"`

	Status    ReviewStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Validate checks a review before persistence.
func (r *PortfolioReview) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return WrapValidation("missing review id")
	case strings.TrimSpace(r.ItemID) == "":
		return WrapValidation("missing item id")
	case strings.TrimSpace(r.ReviewerID) == "":
		return WrapValidation("missing reviewer id")
	}
	for id, s := range r.CriterionScores {
		if s < 0 || s > 10 {
			return WrapValidation("criterion " + id + " score outside [0,10]")
		}
	}
	return nil
}

// MarketplaceProfile is the public, rankable representation of a learner.
// It is a materialized view: rebuildable at any time from the item set plus
// external telemetry, never deleted, only deactivated.
type MarketplaceProfile struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`

	Headline  string `json:"headline,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`

	// ReadinessScore is externally sourced, 0-100.
	ReadinessScore float64 `json:"readiness_score"`
	// PortfolioHealth is the derived 0-10 quality aggregate.
	PortfolioHealth float64 `json:"portfolio_health"`
	TotalViews      int64   `json:"total_views"`
	WeeklyRankDelta int     `json:"weekly_rank_delta"`

	// Rebuild-time aggregates feeding the ranking engine.
	ApprovedItems int     `json:"approved_items_count"`
	AvgCompetency float64 `json:"avg_competency"`

	FeaturedItemIDs []string           `json:"featured_item_ids,omitempty"`
	Skills          map[string]float64 `json:"skills,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks a profile before persistence.
func (m *MarketplaceProfile) Validate() error {
	switch {
	case strings.TrimSpace(m.UserID) == "":
		return WrapValidation("missing user id")
	case strings.TrimSpace(m.Username) == "":
		return WrapValidation("missing username")
	case m.ReadinessScore < 0 || m.ReadinessScore > 100:
		return WrapValidation("readiness score outside [0,100]")
	case m.PortfolioHealth < 0 || m.PortfolioHealth > 10:
		return WrapValidation("portfolio health outside [0,10]")
	}
	return nil
}
