// Package prediction turns team snapshots into outcome probabilities and prices them
// against a target payout.
package prediction

import (
	"math"

	"github.com/yourusername/goalline/internal/models"
)

// Model constants. These are hand-tuned and kept fixed for behavioural parity.
const (
	HomeFieldBonus     = 50.0
	FormMultiplier     = 100.0
	HeadToHeadBonus    = 25.0
	DrawPrior          = 0.25
	LogisticScale      = 400.0
	DefaultTargetOdds  = 1.25
	RecommendThreshold = 0.05
)

// Logistic maps a strength difference onto a raw win probability.
func Logistic(strengthDiff float64) float64 {
	return 1 / (1 + math.Exp(-strengthDiff/LogisticScale))
}

// EstimateFixtureProbabilities prices a fixture from the two snapshots and an optional
// head-to-head record in which team1 is the home side. The result always sums to 1.
func EstimateFixtureProbabilities(home, away models.TeamSnapshot, h2h *models.HeadToHead) models.ProbabilityDistribution {
	homeStrength := home.EloRating + HomeFieldBonus + (home.FormIndex-away.FormIndex)*FormMultiplier
	awayStrength := away.EloRating

	if h2h != nil && h2h.TotalMatches > 0 {
		switch h2h.Advantage {
		case models.AdvantageTeam1:
			homeStrength += HeadToHeadBonus
		case models.AdvantageTeam2:
			awayStrength += HeadToHeadBonus
		}
	}

	rawHome := Logistic(homeStrength - awayStrength)
	dist := models.ProbabilityDistribution{
		HomeWin: rawHome * (1 - DrawPrior),
		Draw:    DrawPrior,
	}
	dist.AwayWin = 1 - dist.HomeWin - dist.Draw

	return normalize(dist)
}

func normalize(d models.ProbabilityDistribution) models.ProbabilityDistribution {
	total := d.Sum()
	if total <= 0 || math.IsNaN(total) {
		return models.ProbabilityDistribution{HomeWin: (1 - DrawPrior) / 2, Draw: DrawPrior, AwayWin: (1 - DrawPrior) / 2}
	}
	return models.ProbabilityDistribution{
		HomeWin: d.HomeWin / total,
		Draw:    d.Draw / total,
		AwayWin: d.AwayWin / total,
	}
}
