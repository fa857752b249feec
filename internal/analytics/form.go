package analytics

import (
	"math"
	"sort"

	"github.com/yourusername/goalline/internal/models"
)

const (
	// DefaultFormDecay weights each older match by a further factor of 0.9.
	DefaultFormDecay = 0.9
	// FormWindow is the number of most recent matches considered.
	FormWindow = 10
	// NeutralForm is returned when there is nothing to measure.
	NeutralForm = 0.5

	maxWinMarginBonus = 0.2
	winMarginStep     = 0.05
)

// CalculateFormIndex returns a recency-weighted score of the most recent matches.
// Matches are ordered newest first and capped to FormWindow before filtering, so an
// unfinished match still consumes a position and its decay weight is lost.
func CalculateFormIndex(matches []models.TeamMatch, decay float64) float64 {
	if len(matches) == 0 {
		return NeutralForm
	}

	ordered := make([]models.TeamMatch, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MatchDate.After(ordered[j].MatchDate)
	})
	if len(ordered) > FormWindow {
		ordered = ordered[:FormWindow]
	}

	var score, totalWeight float64
	for i, m := range ordered {
		if !m.Finished() {
			continue
		}
		weight := math.Pow(decay, float64(i))

		matchScore := matchResultScore(m.GoalsFor, m.GoalsAgainst)
		if m.GoalsFor > m.GoalsAgainst {
			gd := math.Abs(float64(m.GoalDifference()))
			matchScore += math.Min(maxWinMarginBonus, gd*winMarginStep)
		}

		score += matchScore * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return NeutralForm
	}
	return score / totalWeight
}

// ClampUnit limits v to [0,1]; NaN becomes 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
