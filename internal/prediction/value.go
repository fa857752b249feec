package prediction

import (
	"sort"

	"github.com/yourusername/goalline/internal/models"
)

// ValidateOdds rejects payouts that cannot return a profit.
func ValidateOdds(odds float64) error {
	if odds <= 1.0 {
		return models.InvalidConfigf("target odds must be greater than 1.0, got %v", odds)
	}
	return nil
}

// ImpliedProbability is the break-even probability at the given odds.
func ImpliedProbability(odds float64) float64 {
	return 1 / odds
}

// ExpectedValue is the return per unit staked at probability p and decimal odds.
func ExpectedValue(p, odds float64) float64 {
	return p*(odds-1) - (1 - p)
}

// FindValueBets lists the three-way outcomes whose probability beats the break-even
// point at targetOdds, best expected value first. An empty result is not an error.
func FindValueBets(dist models.ProbabilityDistribution, targetOdds float64) ([]models.ValueBet, error) {
	if err := ValidateOdds(targetOdds); err != nil {
		return nil, err
	}

	implied := ImpliedProbability(targetOdds)
	bets := make([]models.ValueBet, 0, 3)
	for _, outcome := range []models.Outcome{models.OutcomeHomeWin, models.OutcomeDraw, models.OutcomeAwayWin} {
		p := dist.Get(outcome)
		if p <= implied {
			continue
		}
		ev := ExpectedValue(p, targetOdds)
		bets = append(bets, models.ValueBet{
			Outcome:          outcome,
			Probability:      p,
			Odds:             targetOdds,
			ExpectedValue:    ev,
			ConfidenceMargin: (p - implied) / implied * 100,
			Recommended:      ev > RecommendThreshold,
		})
	}

	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].ExpectedValue > bets[j].ExpectedValue
	})
	return bets, nil
}

// TopRecommendation returns the best value bet if it is flagged as recommended.
func TopRecommendation(bets []models.ValueBet) *models.ValueBet {
	if len(bets) == 0 || !bets[0].Recommended {
		return nil
	}
	top := bets[0]
	return &top
}
