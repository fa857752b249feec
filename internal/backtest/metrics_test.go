package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/goalline/internal/models"
)

func settled(outcome models.Outcome, confidence, stake, pnl float64, won bool) SettledBet {
	return SettledBet{
		Recommendation: models.Recommendation{
			Stake:    stake,
			Odds:     1.25,
			Scenario: models.BettingScenario{Outcome: outcome, Confidence: confidence},
		},
		Won:        won,
		ProfitLoss: pnl,
	}
}

func TestCalculateMetrics(t *testing.T) {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	state := NewBacktestState(100, start)
	state.EquityCurve = append(state.EquityCurve,
		EquityPoint{Time: start.AddDate(0, 0, 1), Value: 110},
		EquityPoint{Time: start.AddDate(0, 0, 2), Value: 99},
		EquityPoint{Time: start.AddDate(0, 0, 3), Value: 120},
	)
	state.Bets = []SettledBet{
		settled(models.OutcomeHomeWin, 0.9, 40, 10, true),
		settled(models.OutcomeHomeWin, 0.9, 40, -40, false),
		settled(models.OutcomeUnder25, 0.8, 20, 5, true),
	}

	m := CalculateMetrics(state, BacktestConfig{StartDate: start, EndDate: start.AddDate(0, 0, 3)})

	assert.InDelta(t, 0.2, m.TotalReturn, 1e-9)
	assert.InDelta(t, 0.1, m.MaxDrawdown, 1e-9)
	assert.Equal(t, 3, m.TotalBets)
	assert.Equal(t, 2, m.WinningBets)
	assert.Equal(t, 1, m.LosingBets)
	assert.InDelta(t, 100, m.TotalStaked, 1e-9)
	assert.InDelta(t, -25, m.NetProfit, 1e-9)
	assert.InDelta(t, -25, m.ROI, 1e-9)
	assert.InDelta(t, 15.0/40.0, m.ProfitFactor, 1e-9)
	assert.InDelta(t, 10, m.LargestWin, 1e-9)
	assert.InDelta(t, -40, m.LargestLoss, 1e-9)
	assert.InDelta(t, 2.6/3, m.AverageConfidence, 1e-9)
	assert.Equal(t, OutcomeStats{Bets: 2, Wins: 1, ProfitLoss: -30}, m.ByOutcome[string(models.OutcomeHomeWin)])
	assert.NotZero(t, m.SharpeRatio)
}

func TestCalculateMetricsEmptyState(t *testing.T) {
	m := CalculateMetrics(nil, BacktestConfig{})
	assert.Zero(t, m.TotalBets)
	assert.Zero(t, m.ROI)
}

func TestEquityCurveCSV(t *testing.T) {
	curve := EquityCurve{
		{Time: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Value: 100},
		{Time: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), Value: 112.5, DailyPnL: 12.5},
	}
	out, err := curve.ToCSV()
	require.NoError(t, err)
	assert.Equal(t, "date,value,drawdown,daily_pnl\n2025-04-01,100.0000,0.0000,0.0000\n2025-04-02,112.5000,0.0000,12.5000\n", out)
	assert.InDelta(t, 112.5, curve.Final(), 1e-9)
}

func TestRunMonteCarloDeterministic(t *testing.T) {
	bets := []SettledBet{
		settled(models.OutcomeHomeWin, 1.0, 10, 2.5, true),
		settled(models.OutcomeHomeWin, 1.0, 10, 2.5, true),
	}

	result, err := RunMonteCarlo(context.Background(), bets, MonteCarloConfig{Iterations: 500, Seed: 42, InitialBankroll: 100})
	require.NoError(t, err)

	assert.Equal(t, 500, result.Iterations)
	assert.Len(t, result.Distribution, 500)
	// certain wins leave no variance
	assert.InDelta(t, 0.05, result.MeanReturn, 1e-9)
	assert.InDelta(t, 1.0, result.ProbabilityOfProfit, 1e-9)
	assert.Zero(t, result.ProbabilityOfRuin)
}

func TestRunMonteCarloRejectsEmptyBankroll(t *testing.T) {
	_, err := RunMonteCarlo(context.Background(), nil, MonteCarloConfig{})
	assert.Error(t, err)
}

func TestGenerateConsoleReport(t *testing.T) {
	state := NewBacktestState(100, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	state.Bets = []SettledBet{settled(models.OutcomeHomeWin, 0.9, 5, 1.25, true)}
	m := CalculateMetrics(state, BacktestConfig{})

	out := GenerateConsoleReport(NewReport(state, m, nil))
	assert.Contains(t, out, "Backtest Report")
	assert.Contains(t, out, "home_win")
}
