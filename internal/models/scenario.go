package models

// Outcome labels a market selection
type Outcome string

const (
	OutcomeHomeWin    Outcome = "home_win"
	OutcomeDraw       Outcome = "draw"
	OutcomeAwayWin    Outcome = "away_win"
	OutcomeOver25     Outcome = "over_2.5"
	OutcomeUnder25    Outcome = "under_2.5"
	OutcomeBTTS       Outcome = "both_teams_score"
	OutcomeNoBTTS     Outcome = "no_both_teams_score"
	OutcomeHomeOrDraw Outcome = "home_or_draw"
)

// RiskLevel grades a single scenario
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ProbabilityDistribution is a three-way outcome distribution
type ProbabilityDistribution struct {
	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`
}

// Sum returns the total probability mass.
func (p ProbabilityDistribution) Sum() float64 {
	return p.HomeWin + p.Draw + p.AwayWin
}

// Get returns the probability for a three-way outcome.
func (p ProbabilityDistribution) Get(outcome Outcome) float64 {
	switch outcome {
	case OutcomeHomeWin:
		return p.HomeWin
	case OutcomeDraw:
		return p.Draw
	case OutcomeAwayWin:
		return p.AwayWin
	default:
		return 0
	}
}

// ValueBet is an outcome priced above the break-even probability
type ValueBet struct {
	Outcome          Outcome `json:"outcome"`
	Probability      float64 `json:"probability"`
	Odds             float64 `json:"odds"`
	ExpectedValue    float64 `json:"expected_value"`
	ConfidenceMargin float64 `json:"confidence_margin"`
	Recommended      bool    `json:"recommended"`
}

// BettingScenario is a candidate market with its confidence. It is never mutated
// after creation.
type BettingScenario struct {
	Outcome           Outcome   `json:"outcome"`
	Confidence        float64   `json:"confidence"`
	Probability       float64   `json:"probability"`
	ExpectedValue     float64   `json:"expected_value"`
	RiskLevel         RiskLevel `json:"risk_level"`
	SupportingFactors []string  `json:"supporting_factors"`
}

// FixtureScenario pairs a fixture with its best qualifying scenario
type FixtureScenario struct {
	Fixture  Fixture         `json:"fixture"`
	Scenario BettingScenario `json:"scenario"`
}
