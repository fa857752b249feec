package prediction

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/goalline/internal/models"
)

const (
	maxKellyPercent       = 25.0
	maxBestBetStake       = 10.0
	minBetConfidence      = 80.0
	bestBetMinEVPercent   = 5.0
	probabilitySumEpsilon = 1.0
)

var hundred = decimal.NewFromInt(100)

// KellyFraction is the full-Kelly fraction of bankroll for probability p at odds.
func KellyFraction(p, odds float64) float64 {
	return (p*odds - 1) / (odds - 1)
}

// ScenarioEV is one row of a confidence sensitivity grid
type ScenarioEV struct {
	Probability   float64 `json:"probability"`
	ExpectedValue float64 `json:"expected_value"`
	ROI           float64 `json:"roi"`
}

// BetCalculation describes a single stake at a given confidence
type BetCalculation struct {
	Stake                float64          `json:"stake"`
	Odds                 float64          `json:"odds"`
	Confidence           float64          `json:"confidence"`
	PotentialProfit      float64          `json:"potential_profit"`
	PotentialReturn      float64          `json:"potential_return"`
	ExpectedValue        float64          `json:"expected_value"`
	ROI                  float64          `json:"roi"`
	BreakEvenProbability float64          `json:"break_even_probability"`
	KellyFraction        float64          `json:"kelly_fraction"`
	KellyPercentage      float64          `json:"kelly_percentage"`
	KellyInterpretation  string           `json:"kelly_interpretation"`
	RiskLevel            models.RiskLevel `json:"risk_level"`
	Scenarios            []ScenarioEV     `json:"scenarios"`
	ShouldBet            bool             `json:"should_bet"`
	MaxRecommendedStake  float64          `json:"max_recommended_stake"`
}

// CalculateBet evaluates a stake at confidencePct (0-100) and decimal odds.
func CalculateBet(stake, confidencePct, odds float64) (BetCalculation, error) {
	if err := ValidateOdds(odds); err != nil {
		return BetCalculation{}, err
	}
	if stake <= 0 {
		return BetCalculation{}, models.InvalidConfigf("stake must be positive, got %v", stake)
	}
	if confidencePct < 0 || confidencePct > 100 {
		return BetCalculation{}, models.InvalidConfigf("confidence must be within [0,100], got %v", confidencePct)
	}

	p := confidencePct / 100
	stakeD := decimal.NewFromFloat(stake)
	oddsD := decimal.NewFromFloat(odds)
	profit := stakeD.Mul(oddsD.Sub(decimal.NewFromInt(1)))
	ev := expectedProfit(decimal.NewFromFloat(p), profit, stakeD)

	calc := BetCalculation{
		Stake:                stakeD.Round(2).InexactFloat64(),
		Odds:                 odds,
		Confidence:           confidencePct,
		PotentialProfit:      profit.Round(2).InexactFloat64(),
		PotentialReturn:      stakeD.Mul(oddsD).Round(2).InexactFloat64(),
		ExpectedValue:        ev.Round(2).InexactFloat64(),
		ROI:                  ev.Div(stakeD).Mul(hundred).Round(2).InexactFloat64(),
		BreakEvenProbability: ImpliedProbability(odds) * 100,
		KellyFraction:        KellyFraction(p, odds),
	}
	calc.KellyPercentage = math.Max(0, math.Min(maxKellyPercent, calc.KellyFraction*100))

	switch {
	case calc.KellyPercentage <= 5:
		calc.KellyInterpretation = "Conservative"
	case calc.KellyPercentage <= 15:
		calc.KellyInterpretation = "Moderate"
	default:
		calc.KellyInterpretation = "Aggressive"
	}

	switch {
	case confidencePct >= 85:
		calc.RiskLevel = models.RiskLow
	case confidencePct >= minBetConfidence:
		calc.RiskLevel = models.RiskMedium
	default:
		calc.RiskLevel = models.RiskHigh
	}

	for _, pct := range []float64{confidencePct - 5, confidencePct, confidencePct + 5} {
		sp := decimal.NewFromFloat(math.Max(0.01, math.Min(0.99, pct/100)))
		spEV := expectedProfit(sp, profit, stakeD)
		calc.Scenarios = append(calc.Scenarios, ScenarioEV{
			Probability:   pct,
			ExpectedValue: spEV.Round(2).InexactFloat64(),
			ROI:           spEV.Div(stakeD).Mul(hundred).Round(2).InexactFloat64(),
		})
	}

	calc.ShouldBet = ev.IsPositive() && confidencePct >= minBetConfidence
	if calc.KellyPercentage > 0 {
		calc.MaxRecommendedStake = stakeD.Mul(decimal.NewFromFloat(calc.KellyPercentage)).Div(hundred).Round(2).InexactFloat64()
	}
	return calc, nil
}

// expectedProfit is p*profit - (1-p)*stake.
func expectedProfit(p, profit, stake decimal.Decimal) decimal.Decimal {
	return p.Mul(profit).Sub(decimal.NewFromInt(1).Sub(p).Mul(stake))
}

// OutcomeValue is the value analysis of one outcome at the target odds
type OutcomeValue struct {
	Outcome         models.Outcome `json:"outcome"`
	Probability     float64        `json:"probability"`
	FairOdds        float64        `json:"fair_odds"`
	TargetOdds      float64        `json:"target_odds"`
	ExpectedValue   float64        `json:"expected_value"` // percent
	KellyPercentage float64        `json:"kelly_percentage"`
	HasValue        bool           `json:"has_value"`
	ConfidenceLevel string         `json:"confidence_level"`
}

// BestBet is the recommended outcome of an odds analysis
type BestBet struct {
	Outcome          models.Outcome `json:"outcome"`
	ExpectedValue    float64        `json:"expected_value"`
	RecommendedStake float64        `json:"recommended_stake"` // percent of bankroll
}

// OddsAnalysis converts a user-supplied three-way distribution into fair odds and value
type OddsAnalysis struct {
	FairOdds      map[models.Outcome]float64 `json:"fair_odds"`
	ValueAnalysis []OutcomeValue             `json:"value_analysis"`
	BestBet       *BestBet                   `json:"best_bet,omitempty"`
	LowRisk       int                        `json:"low_risk"`
	MediumRisk    int                        `json:"medium_risk"`
	HighRisk      int                        `json:"high_risk"`
}

// AnalyzeOdds prices percentages (summing to 100 within one point) against targetOdds.
func AnalyzeOdds(homePct, drawPct, awayPct, targetOdds float64) (OddsAnalysis, error) {
	if err := ValidateOdds(targetOdds); err != nil {
		return OddsAnalysis{}, err
	}
	if math.Abs(homePct+drawPct+awayPct-100) > probabilitySumEpsilon {
		return OddsAnalysis{}, models.NewValidationError("invalid_probabilities", "probabilities must sum to 100")
	}

	analysis := OddsAnalysis{FairOdds: make(map[models.Outcome]float64, 3)}
	implied := ImpliedProbability(targetOdds)

	inputs := []struct {
		outcome models.Outcome
		pct     float64
	}{
		{models.OutcomeHomeWin, homePct},
		{models.OutcomeDraw, drawPct},
		{models.OutcomeAwayWin, awayPct},
	}
	for _, in := range inputs {
		p := in.pct / 100
		fair := 0.0
		if p > 0 {
			fair = 1 / p
		}
		analysis.FairOdds[in.outcome] = fair

		if p <= implied {
			continue
		}
		ev := ExpectedValue(p, targetOdds)
		ov := OutcomeValue{
			Outcome:         in.outcome,
			Probability:     in.pct,
			FairOdds:        fair,
			TargetOdds:      targetOdds,
			ExpectedValue:   decimal.NewFromFloat(ev).Mul(hundred).Round(2).InexactFloat64(),
			KellyPercentage: decimal.NewFromFloat(KellyFraction(p, targetOdds)).Mul(hundred).Round(2).InexactFloat64(),
			HasValue:        ev > 0,
		}
		switch {
		case ev > 0.1:
			ov.ConfidenceLevel = "High"
		case ev > RecommendThreshold:
			ov.ConfidenceLevel = "Medium"
		default:
			ov.ConfidenceLevel = "Low"
		}
		analysis.ValueAnalysis = append(analysis.ValueAnalysis, ov)

		switch {
		case ov.ExpectedValue > 10:
			analysis.LowRisk++
		case ov.ExpectedValue >= 5:
			analysis.MediumRisk++
		case ov.ExpectedValue > 0:
			analysis.HighRisk++
		}
	}

	sort.SliceStable(analysis.ValueAnalysis, func(i, j int) bool {
		return analysis.ValueAnalysis[i].ExpectedValue > analysis.ValueAnalysis[j].ExpectedValue
	})
	if len(analysis.ValueAnalysis) > 0 && analysis.ValueAnalysis[0].ExpectedValue > bestBetMinEVPercent {
		best := analysis.ValueAnalysis[0]
		analysis.BestBet = &BestBet{
			Outcome:          best.Outcome,
			ExpectedValue:    best.ExpectedValue,
			RecommendedStake: decimal.Min(decimal.NewFromFloat(maxBestBetStake), decimal.NewFromFloat(best.KellyPercentage)).Round(2).InexactFloat64(),
		}
	}
	return analysis, nil
}
