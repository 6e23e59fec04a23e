package model

import (
	"strings"
	"time"
)

// MissionCompleted is the event consumed from the curriculum subsystem when
// a learner finishes a mission. It may trigger portfolio auto-creation.
type MissionCompleted struct {
	UserID    string         `json:"user_id"`
	MissionID string         `json:"mission_id"`
	Title     string         `json:"title"`
	Score     float64        `json:"score"`
	Skills    []string       `json:"skills,omitempty"`
	Evidence  []EvidenceFile `json:"evidence,omitempty"`
}

// Validate rejects malformed mission events before any state mutation.
func (e *MissionCompleted) Validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return WrapValidation("missing user_id")
	case strings.TrimSpace(e.MissionID) == "":
		return WrapValidation("missing mission_id")
	case strings.TrimSpace(e.Title) == "":
		return WrapValidation("missing title")
	case e.Score < 0 || e.Score > 100:
		return WrapValidation("mission score outside [0,100]")
	}
	return nil
}

// VisibilityChanged is the event consumed when a user updates their global
// portfolio-visibility preference.
type VisibilityChanged struct {
	UserID        string     `json:"user_id"`
	NewVisibility Visibility `json:"new_visibility"`
}

// Validate rejects malformed visibility events.
func (e *VisibilityChanged) Validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return WrapValidation("missing user_id")
	case !e.NewVisibility.Valid():
		return WrapValidation("unknown visibility " + string(e.NewVisibility))
	}
	return nil
}

// NotificationKind distinguishes the payloads flowing through the fan-out
// queue.
type NotificationKind string

// Fan-out payload kinds.
const (
	// NotifyItemCreated tells the user's mentors and program directors
	// that a new portfolio item exists.
	NotifyItemCreated NotificationKind = "item_created"
	// NotifyReadinessUpdate pushes an updated readiness aggregate to the
	// external analytics service.
	NotifyReadinessUpdate NotificationKind = "readiness_update"
)

// Notification is the fire-and-forget payload handed to the dispatch
// workers. Delivery failures are logged and dropped, never surfaced to the
// operation that produced the notification.
type Notification struct {
	ID   string           `json:"id"`
	Kind NotificationKind `json:"kind"`

	UserID    string `json:"user_id"`
	ItemID    string `json:"item_id,omitempty"`
	ItemTitle string `json:"item_title,omitempty"`

	// ReadinessScore is only set for NotifyReadinessUpdate payloads.
	ReadinessScore float64   `json:"readiness_score,omitempty"`
	At             time.Time `json:"at"`
}
