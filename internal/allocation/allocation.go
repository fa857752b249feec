// Package allocation sizes qualifying scenarios into a daily set of recommendations.
package allocation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/strategy"
)

const (
	// DefaultStakeFraction stakes 5% of bankroll per pick.
	DefaultStakeFraction = 0.05
	// DefaultMaxDailyBets caps the number of picks per day.
	DefaultMaxDailyBets = 3

	lowRiskAvgConfidence    = 85
	mediumRiskAvgConfidence = 82
	lowRiskShare            = 0.7
)

// Policy holds the allocation constants
type Policy struct {
	strategy.Policy
	StakeFraction float64 `json:"stake_fraction"`
	MaxDailyBets  int     `json:"max_daily_bets"`
}

// DefaultPolicy returns the standard allocation settings.
func DefaultPolicy() Policy {
	return Policy{
		Policy:        strategy.DefaultPolicy(),
		StakeFraction: DefaultStakeFraction,
		MaxDailyBets:  DefaultMaxDailyBets,
	}
}

// Validate rejects policies that cannot produce a sensible allocation.
func (p Policy) Validate() error {
	if err := p.Policy.Validate(); err != nil {
		return err
	}
	if p.StakeFraction <= 0 || p.StakeFraction > 1 {
		return models.InvalidConfigf("stake fraction must be within (0,1], got %v", p.StakeFraction)
	}
	if p.MaxDailyBets <= 0 {
		return models.InvalidConfigf("max daily bets must be positive, got %d", p.MaxDailyBets)
	}
	return nil
}

// BuildDailyRecommendations filters picks to the confidence floor, keeps the best
// MaxDailyBets and stakes each at a fixed fraction of bankroll. An empty result is the
// explicit "no bets" state, not an error.
func BuildDailyRecommendations(picks []models.FixtureScenario, bankroll float64, policy Policy, date time.Time) (*models.DailyRecommendations, error) {
	if bankroll <= 0 {
		return nil, models.InvalidConfigf("bankroll must be positive, got %v", bankroll)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	qualifying := make([]models.FixtureScenario, 0, len(picks))
	for _, pick := range picks {
		if policy.Qualifies(pick.Scenario) {
			qualifying = append(qualifying, pick)
		}
	}
	strategy.SortFixtureScenarios(qualifying)
	if len(qualifying) > policy.MaxDailyBets {
		qualifying = qualifying[:policy.MaxDailyBets]
	}

	stake := decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(policy.StakeFraction))
	payout := decimal.NewFromFloat(policy.PayoutFraction())

	daily := &models.DailyRecommendations{
		Date:            date,
		Bankroll:        bankroll,
		Recommendations: make([]models.Recommendation, 0, len(qualifying)),
	}
	totalStake := decimal.Zero
	totalExpected := decimal.Zero

	for _, pick := range qualifying {
		contribution := decimal.NewFromFloat(pick.Scenario.ExpectedValue).Mul(stake)
		daily.Recommendations = append(daily.Recommendations, models.Recommendation{
			ID:                        uuid.New(),
			Fixture:                   pick.Fixture,
			Scenario:                  pick.Scenario,
			Odds:                      policy.TargetOdds,
			Stake:                     stake.InexactFloat64(),
			PotentialProfit:           stake.Mul(payout).InexactFloat64(),
			ExpectedValueContribution: contribution.InexactFloat64(),
		})
		totalStake = totalStake.Add(stake)
		totalExpected = totalExpected.Add(contribution)
	}

	daily.Summary = models.PortfolioSummary{
		TotalBets:           len(daily.Recommendations),
		TotalStake:          totalStake.InexactFloat64(),
		TotalExpectedProfit: totalExpected.InexactFloat64(),
		AverageConfidence:   averageConfidencePct(daily.Recommendations).InexactFloat64(),
		RiskAssessment:      AssessPortfolioRisk(daily.Recommendations),
	}
	if totalStake.IsPositive() {
		daily.Summary.ROIExpectation = totalExpected.Div(totalStake).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return daily, nil
}

// AssessPortfolioRisk grades a set of picks: Low when average confidence is at least
// 85% and at least 70% of picks are Low risk, Medium when the average is at least 82%,
// High otherwise.
func AssessPortfolioRisk(recs []models.Recommendation) models.PortfolioRisk {
	if len(recs) == 0 {
		return models.PortfolioRiskNone
	}

	avg := averageConfidencePct(recs)
	lowCount := 0
	for _, r := range recs {
		if r.Scenario.RiskLevel == models.RiskLow {
			lowCount++
		}
	}
	lowEnough := decimal.NewFromInt(int64(lowCount)).
		GreaterThanOrEqual(decimal.NewFromInt(int64(len(recs))).Mul(decimal.NewFromFloat(lowRiskShare)))

	switch {
	case avg.GreaterThanOrEqual(decimal.NewFromInt(lowRiskAvgConfidence)) && lowEnough:
		return models.PortfolioRiskLow
	case avg.GreaterThanOrEqual(decimal.NewFromInt(mediumRiskAvgConfidence)):
		return models.PortfolioRiskMedium
	default:
		return models.PortfolioRiskHigh
	}
}

// averageConfidencePct averages confidences expressed in percent to one decimal place.
func averageConfidencePct(recs []models.Recommendation) decimal.Decimal {
	if len(recs) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, r := range recs {
		sum = sum.Add(decimal.NewFromFloat(r.Scenario.Confidence).Mul(decimal.NewFromInt(100)).Round(1))
	}
	return sum.Div(decimal.NewFromInt(int64(len(recs))))
}
