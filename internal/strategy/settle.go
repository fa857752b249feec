package strategy

import "github.com/yourusername/goalline/internal/models"

// SettleOutcome reports whether a market selection won given the final score. ok is
// false for outcomes it cannot settle.
func SettleOutcome(outcome models.Outcome, homeScore, awayScore int) (won bool, ok bool) {
	total := homeScore + awayScore
	switch outcome {
	case models.OutcomeHomeWin:
		return homeScore > awayScore, true
	case models.OutcomeDraw:
		return homeScore == awayScore, true
	case models.OutcomeAwayWin:
		return awayScore > homeScore, true
	case models.OutcomeHomeOrDraw:
		return homeScore >= awayScore, true
	case models.OutcomeOver25:
		return total > 2, true
	case models.OutcomeUnder25:
		return total < 3, true
	case models.OutcomeBTTS:
		return homeScore > 0 && awayScore > 0, true
	case models.OutcomeNoBTTS:
		return homeScore == 0 || awayScore == 0, true
	default:
		return false, false
	}
}

// SettleRecord settles an outcome against a finished match record.
func SettleRecord(outcome models.Outcome, record models.MatchRecord) (won bool, ok bool) {
	if !record.IsFinished() {
		return false, false
	}
	return SettleOutcome(outcome, *record.HomeScore, *record.AwayScore)
}
