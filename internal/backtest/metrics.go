package backtest

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// periodsPerYear annualises per-matchday ratios.
const periodsPerYear = 252.0

// OutcomeStats breaks results down per market
type OutcomeStats struct {
	Bets       int     `json:"bets"`
	Wins       int     `json:"wins"`
	ProfitLoss float64 `json:"profit_loss"`
}

// Metrics represents backtest performance metrics
type Metrics struct {
	TotalReturn       float64                 `json:"total_return"`
	ROI               float64                 `json:"roi"`
	MaxDrawdown       float64                 `json:"max_drawdown"`
	SharpeRatio       float64                 `json:"sharpe_ratio"`
	SortinoRatio      float64                 `json:"sortino_ratio"`
	ValueAtRisk95     float64                 `json:"var_95"`
	TotalBets         int                     `json:"total_bets"`
	WinningBets       int                     `json:"winning_bets"`
	LosingBets        int                     `json:"losing_bets"`
	WinRate           float64                 `json:"win_rate"`
	TotalStaked       float64                 `json:"total_staked"`
	NetProfit         float64                 `json:"net_profit"`
	ProfitFactor      float64                 `json:"profit_factor"`
	AverageWin        float64                 `json:"average_win"`
	AverageLoss       float64                 `json:"average_loss"`
	Expectancy        float64                 `json:"expectancy"`
	LargestWin        float64                 `json:"largest_win"`
	LargestLoss       float64                 `json:"largest_loss"`
	AverageConfidence float64                 `json:"average_confidence"`
	ByOutcome         map[string]OutcomeStats `json:"by_outcome"`
	StartDate         time.Time               `json:"start_date"`
	EndDate           time.Time               `json:"end_date"`
	MatchDays         int                     `json:"match_days"`
	FixturesSkipped   int                     `json:"fixtures_skipped"`
}

// CalculateMetrics calculates metrics from backtest state
func CalculateMetrics(state *BacktestState, cfg BacktestConfig) Metrics {
	metrics := Metrics{
		StartDate: cfg.StartDate,
		EndDate:   cfg.EndDate,
		ByOutcome: map[string]OutcomeStats{},
	}

	if state == nil || len(state.EquityCurve) == 0 {
		return metrics
	}
	metrics.MatchDays = state.DaysReplayed
	metrics.FixturesSkipped = state.FixturesSkipped

	initial := state.EquityCurve[0].Value
	final := state.EquityCurve[len(state.EquityCurve)-1].Value
	if initial > 0 {
		metrics.TotalReturn = (final - initial) / initial
	}

	metrics.MaxDrawdown = calculateMaxDrawdown(state.EquityCurve)
	returns := state.EquityCurve.GetReturns()
	metrics.SharpeRatio = calculateSharpeRatio(returns, cfg.RiskFreeRate)
	metrics.SortinoRatio = calculateSortinoRatio(returns, cfg.RiskFreeRate)
	metrics.ValueAtRisk95 = calculateVaR(returns, 0.95)

	metrics.TotalBets = len(state.Bets)
	metrics.WinningBets, metrics.LosingBets, metrics.AverageWin, metrics.AverageLoss, metrics.LargestWin, metrics.LargestLoss = calculateBetStats(state.Bets)
	metrics.WinRate = calculateWinRate(metrics.WinningBets, metrics.TotalBets)
	metrics.ProfitFactor = calculateProfitFactor(state.Bets)
	metrics.Expectancy = calculateExpectancy(state.Bets)

	confidence := 0.0
	for _, bet := range state.Bets {
		metrics.TotalStaked += bet.Recommendation.Stake
		metrics.NetProfit += bet.ProfitLoss
		confidence += bet.Recommendation.Scenario.Confidence

		key := string(bet.Recommendation.Scenario.Outcome)
		stats := metrics.ByOutcome[key]
		stats.Bets++
		if bet.Won {
			stats.Wins++
		}
		stats.ProfitLoss += bet.ProfitLoss
		metrics.ByOutcome[key] = stats
	}
	if metrics.TotalStaked > 0 {
		metrics.ROI = metrics.NetProfit / metrics.TotalStaked * 100
	}
	if metrics.TotalBets > 0 {
		metrics.AverageConfidence = confidence / float64(metrics.TotalBets)
	}

	return metrics
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func calculateSharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return (average(returns) - riskFreeRate/periodsPerYear) / std * math.Sqrt(periodsPerYear)
}

func calculateSortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := downsideStddev(returns)
	if std == 0 {
		return 0
	}
	return (average(returns) - riskFreeRate/periodsPerYear) / std * math.Sqrt(periodsPerYear)
}

func calculateMaxDrawdown(curve EquityCurve) float64 {
	maxDD := 0.0
	peak := 0.0
	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		if peak == 0 {
			continue
		}
		if drawdown := (peak - p.Value) / peak; drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}

func calculateProfitFactor(bets []SettledBet) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, bet := range bets {
		if bet.ProfitLoss > 0 {
			grossProfit += bet.ProfitLoss
		} else {
			grossLoss += math.Abs(bet.ProfitLoss)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return 999
		}
		return 0
	}
	return grossProfit / grossLoss
}

func calculateExpectancy(bets []SettledBet) float64 {
	if len(bets) == 0 {
		return 0
	}
	net := 0.0
	for _, bet := range bets {
		net += bet.ProfitLoss
	}
	return net / float64(len(bets))
}

func calculateVaR(returns []float64, level float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64{}, returns...)
	sort.Float64s(sorted)
	index := int(math.Floor((1.0 - level) * float64(len(sorted))))
	return sorted[min(max(index, 0), len(sorted)-1)]
}

func calculateBetStats(bets []SettledBet) (wins, losses int, avgWin, avgLoss, largestWin, largestLoss float64) {
	winSum := 0.0
	lossSum := 0.0
	for _, bet := range bets {
		pl := bet.ProfitLoss
		switch {
		case pl > 0:
			wins++
			winSum += pl
			largestWin = math.Max(largestWin, pl)
		case pl < 0:
			losses++
			lossSum += pl
			largestLoss = math.Min(largestLoss, pl)
		}
	}

	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return wins, losses, avgWin, avgLoss, largestWin, largestLoss
}

func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)))
}

func downsideStddev(values []float64) float64 {
	negatives := make([]float64, 0, len(values))
	for _, v := range values {
		if v < 0 {
			negatives = append(negatives, v)
		}
	}
	return stddev(negatives)
}
