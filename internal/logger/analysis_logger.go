// Package logger provides analysis-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for scans, profiles and allocation.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogFixtureSkipped logs a fixture dropped from a batch scan.
func (al *AnalysisLogger) LogFixtureSkipped(fixtureID, teamID int64, reason string) {
	al.WithFields(logrus.Fields{
		"fixture_id": fixtureID,
		"team_id":    teamID,
		"reason":     reason,
	}).Warn("Fixture skipped during scan")
}

// LogScanCompleted logs the outcome of a batch scan.
func (al *AnalysisLogger) LogScanCompleted(fixtures, qualifying, skipped int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"fixtures_scanned": fixtures,
		"qualifying":       qualifying,
		"skipped":          skipped,
		"scan_duration_ms": durationMs,
	}).Info("Fixture scan completed")
}

// LogProfileBuilt logs a team profile computation.
func (al *AnalysisLogger) LogProfileBuilt(teamID int64, matches int, elo, form float64, cacheHit bool) {
	al.WithFields(logrus.Fields{
		"team_id":    teamID,
		"matches":    matches,
		"elo_rating": elo,
		"form_index": form,
		"cache_hit":  cacheHit,
	}).Debug("Team profile built")
}

// LogMatchAnalysis logs a single fixture analysis.
func (al *AnalysisLogger) LogMatchAnalysis(homeTeamID, awayTeamID int64, homeWin, draw, awayWin float64, valueBets int) {
	al.WithFields(logrus.Fields{
		"home_team_id": homeTeamID,
		"away_team_id": awayTeamID,
		"home_win":     homeWin,
		"draw":         draw,
		"away_win":     awayWin,
		"value_bets":   valueBets,
	}).Info("Match analysed")
}

// LogDailyRecommendations logs the allocation for a day.
func (al *AnalysisLogger) LogDailyRecommendations(date string, bets int, totalStake, roi float64, risk string) {
	al.WithFields(logrus.Fields{
		"date":           date,
		"bets":           bets,
		"total_stake":    totalStake,
		"roi_expected":   roi,
		"portfolio_risk": risk,
	}).Info("Daily recommendations built")
}

// LogSyncCompleted logs a championship synchronisation.
func (al *AnalysisLogger) LogSyncCompleted(championshipID int64, teams, matches, failures int, durationMs float64) {
	al.WithFields(logrus.Fields{
		"championship_id":  championshipID,
		"teams_synced":     teams,
		"matches_synced":   matches,
		"failures":         failures,
		"sync_duration_ms": durationMs,
	}).Info("Championship sync completed")
}
