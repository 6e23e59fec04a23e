package simevents

import "time"

// Config holds configuration for the traffic simulation.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumEvents  int           // Number of mission completions to generate
	NumUsers   int           // Distinct learners the completions spread over
	TopN       int           // Number of ranking entries to fetch
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for events
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Enable verbose logging
}

// MissionEvent mirrors the wire shape of POST /v1/events/mission-completed.
type MissionEvent struct {
	UserID    string   `json:"user_id"`
	MissionID string   `json:"mission_id"`
	Title     string   `json:"title"`
	Score     float64  `json:"score"`
	Skills    []string `json:"skills,omitempty"`
}

// RankingEntry mirrors one row of GET /v1/marketplace/rankings.
type RankingEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// MissionAck mirrors the mission-completed acknowledgement.
type MissionAck struct {
	Status string `json:"status"`
}

// Stats holds simulation statistics.
type Stats struct {
	EventsGenerated int
	EventsSubmitted int
	EventsCreated   int
	EventsDuplicate int
	EventsSkipped   int
	EventsFailed    int
	RankingEntries  int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
