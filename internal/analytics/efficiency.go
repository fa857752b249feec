package analytics

import (
	"math"

	"github.com/yourusername/goalline/internal/models"
)

// SecondaryMetrics derives the figures that real tracking data would normally provide.
// HeuristicMetrics stands in until such data exists.
type SecondaryMetrics interface {
	ShotsConversion(goalsPerMatch float64) float64
	AttackingThirdEntries(goalsPerMatch float64) float64
	DefensiveActions(goalsConcededPerMatch float64) float64
}

// HeuristicMetrics approximates secondary figures from goal rates alone
type HeuristicMetrics struct{}

// ShotsConversion is capped at 30%.
func (HeuristicMetrics) ShotsConversion(gpm float64) float64 {
	return math.Min(0.3, gpm*0.15)
}

// AttackingThirdEntries scales goals per match by 8.
func (HeuristicMetrics) AttackingThirdEntries(gpm float64) float64 {
	return gpm * 8
}

// DefensiveActions falls from 20 by 5 per conceded goal, floored at 0.
func (HeuristicMetrics) DefensiveActions(gcpm float64) float64 {
	return math.Max(0, 20-gcpm*5)
}

func finishedOnly(matches []models.TeamMatch) []models.TeamMatch {
	finished := make([]models.TeamMatch, 0, len(matches))
	for _, m := range matches {
		if m.Finished() {
			finished = append(finished, m)
		}
	}
	return finished
}

// CalculateAttackingEfficiency computes attack figures over all finished matches.
// A nil metrics source uses HeuristicMetrics.
func CalculateAttackingEfficiency(matches []models.TeamMatch, metrics SecondaryMetrics) models.AttackStats {
	if metrics == nil {
		metrics = HeuristicMetrics{}
	}
	finished := finishedOnly(matches)
	if len(finished) == 0 {
		return models.AttackStats{}
	}

	goals := 0
	for _, m := range finished {
		goals += m.GoalsFor
	}
	gpm := float64(goals) / float64(len(finished))

	return models.AttackStats{
		GoalsPerMatch:         gpm,
		ShotsConversion:       metrics.ShotsConversion(gpm),
		AttackingThirdEntries: metrics.AttackingThirdEntries(gpm),
	}
}

// CalculateDefensiveSolidity computes defensive figures over all finished matches.
func CalculateDefensiveSolidity(matches []models.TeamMatch, metrics SecondaryMetrics) models.DefenseStats {
	if metrics == nil {
		metrics = HeuristicMetrics{}
	}
	finished := finishedOnly(matches)
	if len(finished) == 0 {
		return models.DefenseStats{}
	}

	conceded, cleanSheets := 0, 0
	for _, m := range finished {
		conceded += m.GoalsAgainst
		if m.GoalsAgainst == 0 {
			cleanSheets++
		}
	}
	n := float64(len(finished))
	gcpm := float64(conceded) / n

	return models.DefenseStats{
		GoalsConcededPerMatch: gcpm,
		CleanSheetsRatio:      float64(cleanSheets) / n,
		DefensiveActions:      metrics.DefensiveActions(gcpm),
	}
}
