// Package rubric defines the static weighted scoring rubrics and the pure
// scorer that aggregates criterion scores into a 0-10 total.
package rubric

import "github.com/upskillhq/portfolio-engine/internal/domain/model"

// Criterion is a single weighted scoring dimension within a rubric.
type Criterion struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight"` // in [0,1]; weights sum to 1.0 per rubric
}

// Rubric is the ordered set of criteria used to score one item type.
type Rubric struct {
	ItemType model.ItemType `json:"item_type"`
	Criteria []Criterion    `json:"criteria"`
}

// TotalWeight returns the sum of all criterion weights.
func (r Rubric) TotalWeight() float64 {
	var sum float64
	for _, c := range r.Criteria {
		sum += c.Weight
	}
	return sum
}

// catalog holds one rubric per item type. Weights sum to 1.0 (±rounding).
var catalog = map[model.ItemType]Rubric{
	model.TypeMission: {
		ItemType: model.TypeMission,
		Criteria: []Criterion{
			{ID: "tech", Name: "Technical execution", Description: "Correctness and depth of the solution", Weight: 0.5},
			{ID: "docs", Name: "Documentation", Description: "Write-up quality and reproducibility", Weight: 0.3},
			{ID: "comms", Name: "Communication", Description: "Clarity of the narrative around the work", Weight: 0.2},
		},
	},
	model.TypeReflection: {
		ItemType: model.TypeReflection,
		Criteria: []Criterion{
			{ID: "insight", Name: "Insight", Description: "Depth of self-assessment", Weight: 0.4},
			{ID: "clarity", Name: "Clarity", Description: "Structure and readability", Weight: 0.35},
			{ID: "growth", Name: "Growth evidence", Description: "Concrete takeaways and next steps", Weight: 0.25},
		},
	},
	model.TypeCertification: {
		ItemType: model.TypeCertification,
		Criteria: []Criterion{
			{ID: "relevance", Name: "Relevance", Description: "Fit with the learner's track", Weight: 0.5},
			{ID: "rigor", Name: "Rigor", Description: "Difficulty and credibility of the issuer", Weight: 0.3},
			{ID: "recency", Name: "Recency", Description: "How current the certification is", Weight: 0.2},
		},
	},
	model.TypeGitHub: {
		ItemType: model.TypeGitHub,
		Criteria: []Criterion{
			{ID: "code_quality", Name: "Code quality", Weight: 0.35},
			{ID: "activity", Name: "Activity", Description: "Commit cadence and project upkeep", Weight: 0.25},
			{ID: "docs", Name: "Documentation", Weight: 0.2},
			{ID: "impact", Name: "Impact", Description: "Stars, forks, downstream use", Weight: 0.2},
		},
	},
	model.TypeTryHackMe: {
		ItemType: model.TypeTryHackMe,
		Criteria: []Criterion{
			{ID: "rooms", Name: "Rooms completed", Weight: 0.4},
			{ID: "consistency", Name: "Consistency", Description: "Sustained practice over time", Weight: 0.3},
			{ID: "difficulty", Name: "Difficulty", Description: "Level of the rooms attempted", Weight: 0.3},
		},
	},
	model.TypeExternal: {
		ItemType: model.TypeExternal,
		Criteria: []Criterion{
			{ID: "relevance", Name: "Relevance", Weight: 0.4},
			{ID: "evidence", Name: "Evidence quality", Weight: 0.35},
			{ID: "presentation", Name: "Presentation", Weight: 0.25},
		},
	},
	model.TypeMarketplaceWork: {
		ItemType: model.TypeMarketplaceWork,
		Criteria: []Criterion{
			{ID: "delivery", Name: "Delivery", Description: "Completed to agreed scope", Weight: 0.4},
			{ID: "client_feedback", Name: "Client feedback", Weight: 0.35},
			{ID: "complexity", Name: "Complexity", Weight: 0.25},
		},
	},
}

// ForType returns the rubric for an item type. The second return is false
// for unknown types.
func ForType(t model.ItemType) (Rubric, bool) {
	r, ok := catalog[t]
	return r, ok
}

// Score computes the weighted total for the given criterion scores.
//
// The divisor is the weight actually covered by scores, not the assumed 1.0,
// so a partially scored rubric is averaged over the scored criteria only.
// An empty rubric (or one with nothing scored) yields 0 rather than a
// division by zero. Scores are assumed to be in [0,10]; callers clamp.
func Score(r Rubric, scores map[string]float64) float64 {
	var weighted, weightSum float64
	for _, c := range r.Criteria {
		s, ok := scores[c.ID]
		if !ok {
			continue
		}
		weighted += s * c.Weight
		weightSum += c.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return weighted / weightSum
}

// Clamp bounds a raw criterion score to the expected [0,10] range.
func Clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}
