package backtest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/allocation"
	"github.com/yourusername/goalline/internal/analytics"
	"github.com/yourusername/goalline/internal/metrics"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/strategy"
)

// MatchSource loads the match pool a replay runs over
type MatchSource interface {
	GetByChampionship(ctx context.Context, championshipID int64, start, end time.Time) ([]models.MatchRecord, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error)
}

// Engine orchestrates backtesting runs
type Engine struct {
	config  BacktestConfig
	matches MatchSource
	scanner *strategy.Scanner
	logger  *logrus.Logger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg BacktestConfig, matches MatchSource, scanner *strategy.Scanner, logger *logrus.Logger) (*Engine, error) {
	if matches == nil {
		return nil, fmt.Errorf("match source is required")
	}
	if scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		config:  cfg,
		matches: matches,
		scanner: scanner,
		logger:  logger,
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// Run replays the configured period and computes its metrics.
func (e *Engine) Run(ctx context.Context) (*BacktestState, Metrics, error) {
	start := time.Now()
	e.logger.WithFields(logrus.Fields{
		"start":           e.config.StartDate.Format(dateLayout),
		"end":             e.config.EndDate.Format(dateLayout),
		"championship_id": e.config.ChampionshipID,
	}).Info("Starting backtest run")

	state, err := e.HistoricalReplay(ctx)
	if err != nil {
		metrics.RecordBacktestRun("failed", time.Since(start))
		return nil, Metrics{}, err
	}

	m := CalculateMetrics(state, e.config)
	metrics.RecordBacktestRun("completed", time.Since(start))
	metrics.UpdateBacktestROI(strconv.FormatInt(e.config.ChampionshipID, 10), m.ROI)

	e.logger.WithFields(logrus.Fields{
		"bets":         m.TotalBets,
		"total_return": m.TotalReturn,
		"roi":          m.ROI,
		"max_drawdown": m.MaxDrawdown,
		"days":         state.DaysReplayed,
	}).Info("Backtest run completed")
	return state, m, nil
}

// HistoricalReplay walks every match day in the period. Each day's profiles are built
// only from matches dated before that day, so no result leaks into its own prediction.
func (e *Engine) HistoricalReplay(ctx context.Context) (*BacktestState, error) {
	records, err := e.loadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MatchDate.Before(records[j].MatchDate)
	})

	state := NewBacktestState(e.config.InitialBankroll, truncateDay(e.config.StartDate))
	for _, day := range e.matchDays(records) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if state.CurrentBankroll <= 0 {
			e.logger.WithField("day", day.date.Format(dateLayout)).Warn("Bankroll exhausted, stopping replay")
			break
		}
		if err := e.processDay(ctx, day, historyBefore(records, day.date), state); err != nil {
			return nil, err
		}
	}

	return state, nil
}

func (e *Engine) loadRecords(ctx context.Context) ([]models.MatchRecord, error) {
	end := truncateDay(e.config.EndDate).AddDate(0, 0, 1)
	if e.config.ChampionshipID > 0 {
		return e.matches.GetByChampionship(ctx, e.config.ChampionshipID, time.Time{}, end)
	}
	return e.matches.GetByDateRange(ctx, time.Time{}, end)
}

type matchDay struct {
	date    time.Time
	records []models.MatchRecord
}

// matchDays groups finished matches inside the period by calendar day, oldest first.
func (e *Engine) matchDays(records []models.MatchRecord) []matchDay {
	first := truncateDay(e.config.StartDate)
	last := truncateDay(e.config.EndDate)

	var days []matchDay
	for _, r := range records {
		if !r.IsFinished() {
			continue
		}
		d := truncateDay(r.MatchDate)
		if d.Before(first) || d.After(last) {
			continue
		}
		if n := len(days); n > 0 && days[n-1].date.Equal(d) {
			days[n-1].records = append(days[n-1].records, r)
			continue
		}
		days = append(days, matchDay{date: d, records: []models.MatchRecord{r}})
	}
	return days
}

// historyBefore returns the prefix of the date-sorted pool played before day.
func historyBefore(sorted []models.MatchRecord, day time.Time) []models.MatchRecord {
	n := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].MatchDate.Before(day)
	})
	return sorted[:n]
}

func (e *Engine) processDay(ctx context.Context, day matchDay, history []models.MatchRecord, state *BacktestState) error {
	snapshots, excluded := e.buildSnapshots(day.records, history)

	fixtures := make([]models.Fixture, 0, len(day.records))
	byID := make(map[int64]models.MatchRecord, len(day.records))
	for _, r := range day.records {
		fixtures = append(fixtures, r.Fixture())
		byID[r.ID] = r
	}

	report, err := e.scanner.FindHighConfidenceBetsExcluding(ctx, fixtures, snapshots, excluded)
	if err != nil {
		return fmt.Errorf("scan %s: %w", day.date.Format(dateLayout), err)
	}
	state.FixturesSkipped += len(report.Skipped)

	daily, err := allocation.BuildDailyRecommendations(report.Qualifying, state.CurrentBankroll, e.config.Policy, day.date)
	if err != nil {
		return fmt.Errorf("allocate %s: %w", day.date.Format(dateLayout), err)
	}

	for _, rec := range daily.Recommendations {
		record := byID[rec.Fixture.ID]
		bet, ok := SettleRecommendation(rec, record)
		if !ok {
			continue
		}
		state.UpdateState(bet)
	}
	state.DaysReplayed++
	state.RecordEquityPoint(day.date, state.CurrentBankroll)
	return nil
}

// buildSnapshots profiles every team playing on the day. Teams with too short a history
// are left out so the scanner reports their fixtures as skipped.
func (e *Engine) buildSnapshots(dayRecords, history []models.MatchRecord) (map[int64]models.TeamSnapshot, strategy.Exclusions) {
	opts := e.config.Profile
	if e.config.ReplayOpponentRatings {
		opts.Ratings = analytics.ReplayLeagueRatings(history)
	}

	snapshots := make(map[int64]models.TeamSnapshot)
	excluded := make(strategy.Exclusions)
	for _, r := range dayRecords {
		for _, teamID := range []int64{r.HomeTeamID, r.AwayTeamID} {
			if _, done := snapshots[teamID]; done {
				continue
			}
			if _, done := excluded[teamID]; done {
				continue
			}
			profile := analytics.EstimateTeamProfile(teamID, history, opts)
			if profile.Snapshot.MatchesPlayed < e.config.MinHistory {
				excluded[teamID] = strategy.SkipInsufficientHistory
				continue
			}
			snapshots[teamID] = profile.Snapshot
		}
	}
	return snapshots, excluded
}

// SettleRecommendation settles a recommendation against the final score of its match.
// ok is false when the match has no final score.
func SettleRecommendation(rec models.Recommendation, record models.MatchRecord) (SettledBet, bool) {
	won, ok := strategy.SettleRecord(rec.Scenario.Outcome, record)
	if !ok {
		return SettledBet{}, false
	}

	stake := decimal.NewFromFloat(rec.Stake)
	pnl := stake.Neg()
	if won {
		pnl = stake.Mul(decimal.NewFromFloat(rec.Odds - 1))
	}

	return SettledBet{
		Recommendation: rec,
		Day:            truncateDay(record.MatchDate),
		FinalScore:     fmt.Sprintf("%d-%d", *record.HomeScore, *record.AwayScore),
		Won:            won,
		ProfitLoss:     pnl.InexactFloat64(),
	}, true
}
