package simevents

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
	"github.com/upskillhq/portfolio-engine/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	scoreBandDivisor   = 8
	duplicateDivisor   = 10
)

// Score band boundaries on the 0-100 mission scale. The distribution keeps
// most completions below the auto-create threshold, a band that creates
// drafts, and a rarer band that auto-approves.
const (
	belowBandMin    = 40.0
	belowBandRange  = 45.0
	createBandMin   = 85.0
	createBandRange = 5.0
	eliteBandMin    = 90.0
	eliteBandRange  = 10.0
)

// Score band cases.
const (
	caseBelowThreshold  = 0 // 40-85, no item
	caseBelowThreshold2 = 1
	caseBelowThreshold3 = 2
	caseBelowThreshold4 = 3
	caseDraftBand       = 4 // 85-90, draft item
	caseDraftBand2      = 5
	caseEliteBand       = 6 // 90-100, auto-approved item
	caseEliteBand2      = 7
)

// missionTitles and missionSkills feed the generated events so the skill
// extractor has something real to chew on.
var missionTitles = []string{
	"Build a REST API in Go",
	"Harden a Linux Server",
	"SQL Injection Lab #SQL #Security",
	"Deploy with Docker and Kubernetes",
	"Incident Response Tabletop",
	"Network Traffic Analysis with Python",
}

var missionSkills = [][]string{
	{"Go", "REST"},
	{"Linux", "Security"},
	{"SQL", "Security"},
	{"Docker", "Kubernetes"},
	{"Incident Response"},
	{"Python", "Networking"},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomInt(max int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return n.Int64()
}

// generateEvents creates mission completions spread over a fixed user pool.
// Roughly one in ten events is an exact duplicate of an earlier one, to
// exercise the idempotency path.
func generateEvents(ctx context.Context, config *Config, stats *Stats) ([]MissionEvent, error) {
	logger.Get().Info(ctx, "generating mission completions",
		logger.Int("numEvents", config.NumEvents),
		logger.Int("numUsers", config.NumUsers))

	userIDs := make([]string, config.NumUsers)
	for i := range userIDs {
		userIDs[i] = uuid.New().String()
	}

	events := make([]MissionEvent, 0, config.NumEvents)
	for i := 0; i < config.NumEvents; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if len(events) > 0 && randomInt(duplicateDivisor) == 0 {
			// Replay an earlier completion verbatim.
			events = append(events, events[randomInt(int64(len(events)))])
			continue
		}

		userID := userIDs[randomInt(int64(len(userIDs)))]
		titleIdx := randomInt(int64(len(missionTitles)))
		events = append(events, MissionEvent{
			UserID:    userID,
			MissionID: "mission-" + strconv.FormatInt(int64(i), 10),
			Title:     missionTitles[titleIdx],
			Score:     generateBandedScore(),
			Skills:    missionSkills[titleIdx],
		})
	}

	stats.EventsGenerated = len(events)
	logger.Get().Info(ctx, "generated events successfully", logger.Int("count", len(events)))
	return events, nil
}

// generateBandedScore creates a mission score with a banded distribution.
func generateBandedScore() float64 {
	switch randomInt(scoreBandDivisor) {
	case caseDraftBand, caseDraftBand2:
		return createBandMin + getRandomFloat()*createBandRange
	case caseEliteBand, caseEliteBand2:
		return eliteBandMin + getRandomFloat()*eliteBandRange
	default:
		return belowBandMin + getRandomFloat()*belowBandRange
	}
}
