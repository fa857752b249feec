package strategy

import (
	"math"

	"github.com/yourusername/goalline/internal/models"
)

// DominantHomeRule backs the home side when its strength exceeds the visitor's by 200
type DominantHomeRule struct{}

func (DominantHomeRule) Name() string { return "dominant_home" }

func (DominantHomeRule) Evaluate(ctx Context) (models.BettingScenario, bool) {
	diff := TeamStrength(ctx.Home, true) - TeamStrength(ctx.Away, false)
	if diff < 200 {
		return models.BettingScenario{}, false
	}
	return newScenario(ctx.Policy, models.OutcomeHomeWin, math.Min(0.9, 0.7+diff/1000), models.RiskLow,
		"significant strength advantage", "home advantage"), true
}

// GoalTotalRule targets over or under 2.5 goals from the expected match total
type GoalTotalRule struct{}

func (GoalTotalRule) Name() string { return "goal_total" }

func (GoalTotalRule) Evaluate(ctx Context) (models.BettingScenario, bool) {
	goals := ExpectedMatchGoals(ctx.Home, ctx.Away)
	switch {
	case goals >= 2.8:
		return newScenario(ctx.Policy, models.OutcomeOver25, math.Min(0.85, 0.6+(goals-2.5)*0.1), models.RiskMedium,
			"high scoring averages", "attacking record"), true
	case goals <= 1.8:
		return newScenario(ctx.Policy, models.OutcomeUnder25, math.Min(0.83, 0.65+(2.0-goals)*0.1), models.RiskLow,
			"solid defences", "low scoring averages"), true
	default:
		return models.BettingScenario{}, false
	}
}

// BothTeamsScoreRule targets both-teams-to-score markets at either extreme
type BothTeamsScoreRule struct{}

func (BothTeamsScoreRule) Name() string { return "both_teams_score" }

func (BothTeamsScoreRule) Evaluate(ctx Context) (models.BettingScenario, bool) {
	btts := BothTeamsScoreProbability(ctx.Home, ctx.Away)
	if btts >= 0.82 {
		return newScenario(ctx.Policy, models.OutcomeBTTS, btts, models.RiskMedium,
			"both attacks effective", "vulnerable defences"), true
	}
	if btts <= 0.18 && 1-btts >= 0.82 {
		return newScenario(ctx.Policy, models.OutcomeNoBTTS, 1-btts, models.RiskLow,
			"one or both sides struggle to score", "solid defences"), true
	}
	return models.BettingScenario{}, false
}

// DoubleChanceRule backs home-or-draw when the home side is a clear favourite
type DoubleChanceRule struct{}

func (DoubleChanceRule) Name() string { return "double_chance" }

func (DoubleChanceRule) Evaluate(ctx Context) (models.BettingScenario, bool) {
	p := HomeOrDrawProbability(ctx.Home, ctx.Away)
	if p < 0.82 {
		return models.BettingScenario{}, false
	}
	return newScenario(ctx.Policy, models.OutcomeHomeOrDraw, p, models.RiskLow,
		"home side favoured", "visitor struggling"), true
}

// FormGapRule backs an in-form home side against an out-of-form visitor
type FormGapRule struct{}

func (FormGapRule) Name() string { return "form_gap" }

func (FormGapRule) Evaluate(ctx Context) (models.BettingScenario, bool) {
	hf, af := ctx.Home.FormIndex, ctx.Away.FormIndex
	if hf < 0.8 || af > 0.3 {
		return models.BettingScenario{}, false
	}
	return newScenario(ctx.Policy, models.OutcomeHomeWin, math.Min(0.85, 0.7+(hf-af)*0.3), models.RiskMedium,
		"home side in excellent form", "visitor in poor form"), true
}
