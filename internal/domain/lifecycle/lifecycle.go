// Package lifecycle implements the portfolio item workflow state machine.
//
// The legal flow is:
//
//	draft -> submitted -> in_review -> changes_requested -> submitted (loop)
//	                                -> approved -> published
//
// Everything else is rejected with ErrInvalidTransition and leaves the item
// untouched. The resubmission loop is unbounded.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/upskillhq/portfolio-engine/internal/domain/model"
)

// transitions lists the legal target states per current state.
// published is terminal.
var transitions = map[model.ItemStatus][]model.ItemStatus{
	model.StatusDraft:            {model.StatusSubmitted},
	model.StatusSubmitted:        {model.StatusInReview},
	model.StatusInReview:         {model.StatusChangesRequested, model.StatusApproved},
	model.StatusChangesRequested: {model.StatusSubmitted},
	model.StatusApproved:         {model.StatusPublished},
	model.StatusPublished:        {},
}

// CanTransition reports whether from -> to is a legal workflow step.
func CanTransition(from, to model.ItemStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Advance moves item to the target status, stamping timestamps as required.
// The check and the mutation happen together so a failed call leaves the
// item exactly as it was.
func Advance(item *model.PortfolioItem, to model.ItemStatus, now time.Time) error {
	if !CanTransition(item.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, item.Status, to)
	}

	item.Status = to
	item.UpdatedAt = now
	switch to {
	case model.StatusApproved:
		// First approval only; re-approvals after a changes_requested
		// loop keep the original timestamp.
		if item.ApprovedAt == nil {
			ts := now
			item.ApprovedAt = &ts
		}
	case model.StatusPublished:
		if item.PublishedAt == nil {
			ts := now
			item.PublishedAt = &ts
		}
	}
	return nil
}

// CheckEditable reports whether the owner may mutate the item's content in
// its current state. Items under active review are locked by the reviewer
// (ErrConflict); items past approval are frozen (ErrInvalidTransition).
func CheckEditable(status model.ItemStatus) error {
	switch status {
	case model.StatusDraft, model.StatusChangesRequested:
		return nil
	case model.StatusSubmitted, model.StatusInReview:
		return fmt.Errorf("%w: item is under review", model.ErrConflict)
	default:
		return fmt.Errorf("%w: %s items are read-only", ErrInvalidTransition, status)
	}
}
