package backtest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// MonteCarloConfig configures monte carlo simulation
type MonteCarloConfig struct {
	Iterations      int
	Seed            int64
	InitialBankroll float64
}

// MonteCarloResult represents monte carlo outcomes
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	MeanReturn          float64            `json:"mean_return"`
	StdReturn           float64            `json:"std_return"`
	VaR95               float64            `json:"var_95"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	ProbabilityOfRuin   float64            `json:"probability_of_ruin"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
	Distribution        []float64          `json:"-"`
}

// RunMonteCarlo replays the settled bets many times, letting each one win with the
// confidence the scanner assigned it. It answers how the period would have gone had
// results followed the model exactly.
func RunMonteCarlo(ctx context.Context, bets []SettledBet, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.InitialBankroll <= 0 {
		return MonteCarloResult{}, fmt.Errorf("initial bankroll must be positive")
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)

	for i := 0; i < cfg.Iterations; i++ {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return MonteCarloResult{}, err
			}
		}
		bankroll := cfg.InitialBankroll
		for _, bet := range bets {
			rec := bet.Recommendation
			if rng.Float64() < rec.Scenario.Confidence {
				bankroll += rec.Stake * (rec.Odds - 1)
			} else {
				bankroll -= rec.Stake
			}
			if bankroll <= 0 {
				bankroll = 0
				break
			}
		}
		distribution[i] = bankroll
	}

	mean, std := meanStd(distribution)
	var95 := percentile(distribution, 0.05)

	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		MeanReturn:          (mean - cfg.InitialBankroll) / cfg.InitialBankroll,
		StdReturn:           std / cfg.InitialBankroll,
		VaR95:               (var95 - cfg.InitialBankroll) / cfg.InitialBankroll,
		ProbabilityOfProfit: fractionWhere(distribution, func(v float64) bool { return v > cfg.InitialBankroll }),
		ProbabilityOfRuin:   fractionWhere(distribution, func(v float64) bool { return v <= 0 }),
		ConfidenceIntervals: CalculateConfidenceIntervals(distribution, []float64{0.9, 0.95, 0.99}),
		Distribution:        distribution,
	}, nil
}

// CalculateConfidenceIntervals returns the width of each central interval of the
// distribution, keyed by level.
func CalculateConfidenceIntervals(distribution []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64, len(levels))
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		results[fmt.Sprintf("%.0f%%", level*100)] = percentile(distribution, 1.0-p) - percentile(distribution, p)
	}
	return results
}

func meanStd(values []float64) (float64, float64) {
	return average(values), stddev(values)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	return sorted[min(max(idx, 0), len(sorted)-1)]
}

func fractionWhere(values []float64, pred func(float64) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if pred(v) {
			count++
		}
	}
	return float64(count) / float64(len(values))
}
