package models

import (
	"time"

	"github.com/google/uuid"
)

// PortfolioRisk grades a whole day's picks
type PortfolioRisk string

const (
	PortfolioRiskLow    PortfolioRisk = "Low"
	PortfolioRiskMedium PortfolioRisk = "Medium"
	PortfolioRiskHigh   PortfolioRisk = "High"
	PortfolioRiskNone   PortfolioRisk = "No bets"
)

// Recommendation is a sized pick
type Recommendation struct {
	ID                        uuid.UUID       `json:"id"`
	Fixture                   Fixture         `json:"fixture"`
	Scenario                  BettingScenario `json:"scenario"`
	Odds                      float64         `json:"odds"`
	Stake                     float64         `json:"stake"`
	PotentialProfit           float64         `json:"potential_profit"`
	ExpectedValueContribution float64         `json:"expected_value_contribution"`
}

// PortfolioSummary aggregates a day's recommendations
type PortfolioSummary struct {
	TotalBets           int           `json:"total_bets"`
	TotalStake          float64       `json:"total_stake"`
	TotalExpectedProfit float64       `json:"total_expected_profit"`
	ROIExpectation      float64       `json:"roi_expectation"`
	AverageConfidence   float64       `json:"average_confidence"`
	RiskAssessment      PortfolioRisk `json:"risk_assessment"`
}

// DailyRecommendations is the output of allocation for one day
type DailyRecommendations struct {
	Date            time.Time        `json:"date"`
	Bankroll        float64          `json:"bankroll"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         PortfolioSummary `json:"summary"`
}

// HasBets reports whether any pick survived filtering.
func (d *DailyRecommendations) HasBets() bool {
	return len(d.Recommendations) > 0
}
