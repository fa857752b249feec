package backtest

import (
	"time"

	"github.com/yourusername/goalline/internal/models"
)

// SettledBet is a replayed recommendation with its result
type SettledBet struct {
	Recommendation models.Recommendation `json:"recommendation"`
	Day            time.Time             `json:"day"`
	FinalScore     string                `json:"final_score"`
	Won            bool                  `json:"won"`
	ProfitLoss     float64               `json:"profit_loss"`
}

// BacktestState tracks current backtest state
type BacktestState struct {
	CurrentBankroll float64
	PeakBankroll    float64
	Bets            []SettledBet
	EquityCurve     EquityCurve
	DailyPnL        map[time.Time]float64
	DaysReplayed    int
	FixturesSkipped int
}

// NewBacktestState initializes backtest state with an opening equity point at start.
func NewBacktestState(initialBankroll float64, start time.Time) *BacktestState {
	state := &BacktestState{
		CurrentBankroll: initialBankroll,
		PeakBankroll:    initialBankroll,
		Bets:            []SettledBet{},
		EquityCurve:     EquityCurve{},
		DailyPnL:        make(map[time.Time]float64),
	}
	state.RecordEquityPoint(start, initialBankroll)
	return state
}

// UpdateState applies a settled bet to the bankroll.
func (s *BacktestState) UpdateState(bet SettledBet) {
	s.CurrentBankroll += bet.ProfitLoss
	if s.CurrentBankroll > s.PeakBankroll {
		s.PeakBankroll = s.CurrentBankroll
	}
	s.Bets = append(s.Bets, bet)
	s.DailyPnL[truncateDay(bet.Day)] += bet.ProfitLoss
}

// GetCurrentDrawdown calculates peak-to-trough drawdown
func (s *BacktestState) GetCurrentDrawdown() float64 {
	if s.PeakBankroll == 0 {
		return 0
	}
	drawdown := (s.PeakBankroll - s.CurrentBankroll) / s.PeakBankroll
	if drawdown < 0 {
		return 0
	}
	return drawdown
}

// RecordEquityPoint adds an end-of-day point to the curve.
func (s *BacktestState) RecordEquityPoint(t time.Time, value float64) {
	drawdown := 0.0
	if value < s.PeakBankroll && s.PeakBankroll > 0 {
		drawdown = (s.PeakBankroll - value) / s.PeakBankroll
	}

	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:     t,
		Value:    value,
		Drawdown: drawdown,
		DailyPnL: s.DailyPnL[truncateDay(t)],
	})
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
