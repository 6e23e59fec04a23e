// Package ranking computes the marketplace ordering of learner profiles.
//
// The computation is a pure function of its inputs: the same population
// always produces the same ordering and the same scores. It ranks the full
// population each time; callers wanting week-over-week deltas snapshot and
// diff externally.
package ranking

import (
	"math"
	"sort"
	"time"
)

// Normalization caps. Factors are clamped to [0,1] before weighting.
const (
	viewsCap        = 1000.0
	approvedCap     = 20.0
	ageCapDays      = 365.0
	readinessCap    = 100.0
	healthCap       = 10.0
	competencyCap   = 10.0
	hoursPerDay     = 24.0
	scorePercentage = 100.0
)

// Factor weights. They sum to 1.0.
const (
	weightViews      = 0.15
	weightReadiness  = 0.25
	weightHealth     = 0.20
	weightItemCount  = 0.15
	weightCompetency = 0.15
	weightAge        = 0.10 // established profiles get a small boost
)

// ProfileStats is the per-profile input to a ranking run.
type ProfileStats struct {
	UserID   string
	Username string

	ReadinessScore  float64 // 0-100, externally sourced
	PortfolioHealth float64 // 0-10
	TotalViews      int64
	ApprovedItems   int
	AvgCompetency   float64 // 0-10, mean competency score across items

	CreatedAt time.Time
}

// Entry is one row of the computed marketplace ordering.
type Entry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Score    int    `json:"score"` // 0-100

	ReadinessScore  float64 `json:"readiness_score"`
	PortfolioHealth float64 `json:"portfolio_health"`
	TotalViews      int64   `json:"total_views"`
	ApprovedItems   int     `json:"approved_items_count"`
}

// clamp01 bounds x to [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Score computes the 0-100 ranking score for a single profile at the given
// reference time.
func Score(p ProfileStats, now time.Time) int {
	ageDays := now.Sub(p.CreatedAt).Hours() / hoursPerDay

	views := clamp01(float64(p.TotalViews) / viewsCap)
	readiness := clamp01(p.ReadinessScore / readinessCap)
	health := clamp01(p.PortfolioHealth / healthCap)
	items := clamp01(float64(p.ApprovedItems) / approvedCap)
	competency := clamp01(p.AvgCompetency / competencyCap)
	age := clamp01(ageDays / ageCapDays)

	weighted := views*weightViews +
		readiness*weightReadiness +
		health*weightHealth +
		items*weightItemCount +
		competency*weightCompetency +
		age*weightAge

	return int(math.Round(weighted * scorePercentage))
}

// Rank orders the population by score descending and assigns dense ranks
// 1..N. Ties are broken by profile-creation order (earlier first) and then
// by user id, keeping repeated runs over unchanged input byte-stable.
func Rank(profiles []ProfileStats, now time.Time) []Entry {
	entries := make([]Entry, len(profiles))
	created := make([]time.Time, len(profiles))
	for i, p := range profiles {
		entries[i] = Entry{
			UserID:          p.UserID,
			Username:        p.Username,
			Score:           Score(p, now),
			ReadinessScore:  p.ReadinessScore,
			PortfolioHealth: p.PortfolioHealth,
			TotalViews:      p.TotalViews,
			ApprovedItems:   p.ApprovedItems,
		}
		created[i] = p.CreatedAt
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, eb := entries[idx[a]], entries[idx[b]]
		if ea.Score != eb.Score {
			return ea.Score > eb.Score
		}
		ca, cb := created[idx[a]], created[idx[b]]
		if !ca.Equal(cb) {
			return ca.Before(cb)
		}
		return ea.UserID < eb.UserID
	})

	out := make([]Entry, len(entries))
	for pos, i := range idx {
		out[pos] = entries[i]
		out[pos].Rank = pos + 1
	}
	return out
}
