package backtest

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/goalline/internal/allocation"
	"github.com/yourusername/goalline/internal/analytics"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/strategy"
)

type fakeMatchSource struct {
	records []models.MatchRecord
	err     error
}

func (f *fakeMatchSource) GetByChampionship(ctx context.Context, championshipID int64, start, end time.Time) ([]models.MatchRecord, error) {
	out := []models.MatchRecord{}
	for _, r := range f.records {
		if r.ChampionshipID == championshipID && r.MatchDate.Before(end) {
			out = append(out, r)
		}
	}
	return out, f.err
}

func (f *fakeMatchSource) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	out := []models.MatchRecord{}
	for _, r := range f.records {
		if !r.MatchDate.Before(start) && r.MatchDate.Before(end) {
			out = append(out, r)
		}
	}
	return out, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func date(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 16, 0, 0, 0, time.UTC)
}

func finished(id, home, away int64, hs, as int, when time.Time) models.MatchRecord {
	return models.MatchRecord{
		ID:             id,
		HomeTeamID:     home,
		AwayTeamID:     away,
		HomeScore:      models.IntPtr(hs),
		AwayScore:      models.IntPtr(as),
		Status:         models.MatchStatusFinished,
		MatchDate:      when,
		ChampionshipID: 10,
	}
}

// leaguePool gives team 1 three 3-0 wins and team 2 three 0-3 defeats before they meet.
func leaguePool(finalHome, finalAway int) []models.MatchRecord {
	return []models.MatchRecord{
		finished(1, 1, 3, 3, 0, date(time.April, 1)),
		finished(2, 3, 2, 3, 0, date(time.April, 1)),
		finished(3, 1, 4, 3, 0, date(time.April, 8)),
		finished(4, 4, 2, 3, 0, date(time.April, 8)),
		finished(5, 1, 5, 3, 0, date(time.April, 15)),
		finished(6, 5, 2, 3, 0, date(time.April, 15)),
		finished(100, 1, 2, finalHome, finalAway, date(time.April, 22)),
	}
}

func newTestEngine(t *testing.T, records []models.MatchRecord, minHistory int) *Engine {
	t.Helper()
	scanner, err := strategy.NewScanner(strategy.DefaultPolicy(), quietLogger())
	require.NoError(t, err)

	cfg := BacktestConfig{
		StartDate:       time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		ChampionshipID:  10,
		InitialBankroll: 1000,
		MinHistory:      minHistory,
		Policy:          allocation.DefaultPolicy(),
		Profile:         analytics.DefaultProfileOptions(),
	}
	engine, err := NewEngine(cfg, &fakeMatchSource{records: records}, scanner, quietLogger())
	require.NoError(t, err)
	return engine
}

func TestHistoricalReplayWinningDay(t *testing.T) {
	engine := newTestEngine(t, leaguePool(4, 0), DefaultMinHistory)

	state, err := engine.HistoricalReplay(context.Background())
	require.NoError(t, err)

	require.Len(t, state.Bets, 1)
	bet := state.Bets[0]
	assert.Equal(t, int64(100), bet.Recommendation.Fixture.ID)
	assert.True(t, bet.Won)
	assert.Equal(t, "4-0", bet.FinalScore)
	assert.InDelta(t, 50, bet.Recommendation.Stake, 1e-9)
	assert.InDelta(t, 12.5, bet.ProfitLoss, 1e-9)
	assert.InDelta(t, 1012.5, state.CurrentBankroll, 1e-9)
	assert.Equal(t, 1, state.DaysReplayed)
	require.Len(t, state.EquityCurve, 2)
	assert.InDelta(t, 12.5, state.EquityCurve[1].DailyPnL, 1e-9)
}

func TestHistoricalReplayLosingDay(t *testing.T) {
	engine := newTestEngine(t, leaguePool(1, 2), DefaultMinHistory)

	state, m, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, state.Bets, 1)
	assert.False(t, state.Bets[0].Won)
	assert.InDelta(t, -50, state.Bets[0].ProfitLoss, 1e-9)
	assert.InDelta(t, 950, state.CurrentBankroll, 1e-9)

	assert.Equal(t, 1, m.TotalBets)
	assert.Equal(t, 1, m.LosingBets)
	assert.InDelta(t, -100, m.ROI, 1e-9)
	assert.InDelta(t, 0.05, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, -0.05, m.TotalReturn, 1e-9)
}

func TestHistoricalReplaySkipsShortHistory(t *testing.T) {
	engine := newTestEngine(t, leaguePool(4, 0), 5)

	state, err := engine.HistoricalReplay(context.Background())
	require.NoError(t, err)

	assert.Empty(t, state.Bets)
	assert.Equal(t, 1, state.FixturesSkipped)
	assert.InDelta(t, 1000, state.CurrentBankroll, 1e-9)
}

func TestHistoricalReplayIgnoresSameDayResults(t *testing.T) {
	// team 1 and team 2 only have history on the replayed day itself
	records := []models.MatchRecord{
		finished(1, 1, 3, 3, 0, date(time.April, 22)),
		finished(2, 3, 2, 3, 0, date(time.April, 22)),
		finished(100, 1, 2, 4, 0, date(time.April, 22)),
	}
	engine := newTestEngine(t, records, 1)

	state, err := engine.HistoricalReplay(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Bets)
	assert.Equal(t, 3, state.FixturesSkipped)
}

func TestNewEngineValidation(t *testing.T) {
	scanner, err := strategy.NewScanner(strategy.DefaultPolicy(), quietLogger())
	require.NoError(t, err)

	_, err = NewEngine(BacktestConfig{}, nil, scanner, nil)
	assert.Error(t, err)

	cfg := BacktestConfig{
		StartDate:       date(time.May, 1),
		EndDate:         date(time.April, 1),
		InitialBankroll: 100,
		Policy:          allocation.DefaultPolicy(),
	}
	_, err = NewEngine(cfg, &fakeMatchSource{}, scanner, nil)
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

func TestSettleRecommendationUnfinished(t *testing.T) {
	rec := models.Recommendation{Stake: 10, Odds: 1.25, Scenario: models.BettingScenario{Outcome: models.OutcomeHomeWin}}
	_, ok := SettleRecommendation(rec, models.MatchRecord{Status: models.MatchStatusScheduled})
	assert.False(t, ok)
}
