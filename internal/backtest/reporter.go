package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Report bundles everything a run produces
type Report struct {
	Metrics     Metrics           `json:"metrics"`
	MonteCarlo  *MonteCarloResult `json:"monte_carlo,omitempty"`
	EquityCurve EquityCurve       `json:"equity_curve"`
	Bets        []SettledBet      `json:"bets"`
}

// NewReport assembles a report from a finished run.
func NewReport(state *BacktestState, m Metrics, mc *MonteCarloResult) Report {
	return Report{
		Metrics:     m,
		MonteCarlo:  mc,
		EquityCurve: state.EquityCurve,
		Bets:        state.Bets,
	}
}

// GenerateConsoleReport formats metrics for terminal output
func GenerateConsoleReport(r Report) string {
	m := r.Metrics
	var b strings.Builder
	b.WriteString("Backtest Report\n")
	b.WriteString("================\n")
	b.WriteString(fmt.Sprintf("Period: %s to %s (%d match days)\n", m.StartDate.Format(dateLayout), m.EndDate.Format(dateLayout), m.MatchDays))
	b.WriteString(fmt.Sprintf("Bets: %d (won %d, lost %d)\n", m.TotalBets, m.WinningBets, m.LosingBets))
	b.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", m.WinRate*100))
	b.WriteString(fmt.Sprintf("Average Confidence: %.2f%%\n", m.AverageConfidence*100))
	b.WriteString(fmt.Sprintf("Staked: %.2f  Net Profit: %.2f  ROI: %.2f%%\n", m.TotalStaked, m.NetProfit, m.ROI))
	b.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", m.TotalReturn*100))
	b.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", m.MaxDrawdown*100))
	b.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", m.SharpeRatio))
	b.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", m.ProfitFactor))
	b.WriteString(fmt.Sprintf("Largest Win: %.2f  Largest Loss: %.2f\n", m.LargestWin, m.LargestLoss))
	if m.FixturesSkipped > 0 {
		b.WriteString(fmt.Sprintf("Fixtures skipped (short history): %d\n", m.FixturesSkipped))
	}

	if len(m.ByOutcome) > 0 {
		b.WriteString("\nBy market\n")
		outcomes := make([]string, 0, len(m.ByOutcome))
		for k := range m.ByOutcome {
			outcomes = append(outcomes, k)
		}
		sort.Strings(outcomes)
		for _, k := range outcomes {
			s := m.ByOutcome[k]
			b.WriteString(fmt.Sprintf("  %-22s %3d bets  %3d won  P/L %8.2f\n", k, s.Bets, s.Wins, s.ProfitLoss))
		}
	}

	if r.MonteCarlo != nil {
		mc := r.MonteCarlo
		b.WriteString(fmt.Sprintf("\nMonte Carlo (%d runs)\n", mc.Iterations))
		b.WriteString(fmt.Sprintf("  Mean Return: %.2f%%\n", mc.MeanReturn*100))
		b.WriteString(fmt.Sprintf("  Probability of Profit: %.2f%%\n", mc.ProbabilityOfProfit*100))
		b.WriteString(fmt.Sprintf("  Probability of Ruin: %.2f%%\n", mc.ProbabilityOfRuin*100))
	}
	return b.String()
}

// WriteJSONReport writes the full report to outputPath.
func WriteJSONReport(r Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// WriteEquityCSV exports the equity curve for spreadsheets
func WriteEquityCSV(curve EquityCurve, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := curve.ToCSV()
	if err != nil {
		return fmt.Errorf("encode equity curve: %w", err)
	}
	return os.WriteFile(outputPath, []byte(data), 0o644)
}
