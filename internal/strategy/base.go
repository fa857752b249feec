package strategy

import (
	"math"

	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/prediction"
)

const (
	// DefaultConfidenceFloor is the minimum confidence a scenario needs to be reported.
	DefaultConfidenceFloor = 0.82
)

// Policy holds the constants every scenario is priced with
type Policy struct {
	TargetOdds      float64 `json:"target_odds"`
	ConfidenceFloor float64 `json:"confidence_floor"`
}

// DefaultPolicy prices scenarios at 1.25 with an 82% floor.
func DefaultPolicy() Policy {
	return Policy{
		TargetOdds:      prediction.DefaultTargetOdds,
		ConfidenceFloor: DefaultConfidenceFloor,
	}
}

// Validate rejects policies that cannot produce a sensible scan.
func (p Policy) Validate() error {
	if err := prediction.ValidateOdds(p.TargetOdds); err != nil {
		return err
	}
	if math.IsNaN(p.ConfidenceFloor) || p.ConfidenceFloor < 0 || p.ConfidenceFloor > 1 {
		return models.InvalidConfigf("confidence floor must be within [0,1], got %v", p.ConfidenceFloor)
	}
	return nil
}

// PayoutFraction is the profit per unit staked on a win.
func (p Policy) PayoutFraction() float64 {
	return p.TargetOdds - 1
}

// ExpectedValue prices a scenario at the policy odds.
func (p Policy) ExpectedValue(confidence float64) float64 {
	return confidence*p.PayoutFraction() - (1 - confidence)
}

// Qualifies reports whether a scenario clears the confidence floor.
func (p Policy) Qualifies(s models.BettingScenario) bool {
	return s.Confidence >= p.ConfidenceFloor
}

// NormalizeProbability ensures probability in [0,1]
func NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// TeamStrength is the scenario-specific strength score of a team.
func TeamStrength(s models.TeamSnapshot, isHome bool) float64 {
	strength := s.EloRating +
		(s.GoalsPerMatch-s.GoalsConcededPerMatch)*50 +
		(s.WinPercentage-50)*2 +
		(s.FormIndex-0.5)*100
	if isHome {
		strength += prediction.HomeFieldBonus
	}
	return strength
}

// ExpectedMatchGoals multiplies each side's scoring rate by the other's conceding rate.
// Both inputs are already per-match rates and are not normalised further.
func ExpectedMatchGoals(home, away models.TeamSnapshot) float64 {
	return home.GoalsPerMatch*away.GoalsConcededPerMatch + away.GoalsPerMatch*home.GoalsConcededPerMatch
}

// BothTeamsScoreProbability combines each side's capped scoring chance.
func BothTeamsScoreProbability(home, away models.TeamSnapshot) float64 {
	return math.Min(0.9, home.GoalsPerMatch/2.0) * math.Min(0.9, away.GoalsPerMatch/2.0)
}

// HomeOrDrawProbability adds the draw prior to the logistic home-win chance.
func HomeOrDrawProbability(home, away models.TeamSnapshot) float64 {
	diff := TeamStrength(home, true) - TeamStrength(away, false)
	return prediction.Logistic(diff) + prediction.DrawPrior
}

func newScenario(p Policy, outcome models.Outcome, confidence float64, risk models.RiskLevel, factors ...string) models.BettingScenario {
	confidence = NormalizeProbability(confidence)
	return models.BettingScenario{
		Outcome:           outcome,
		Confidence:        confidence,
		Probability:       confidence,
		ExpectedValue:     p.ExpectedValue(confidence),
		RiskLevel:         risk,
		SupportingFactors: factors,
	}
}
