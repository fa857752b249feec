// Package tracker keeps an in-process record of issued picks and their results.
package tracker

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/logger"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/strategy"
)

const (
	// UnitStake is the notional stake used for performance figures.
	UnitStake = 100.0

	noBetType = "N/A"
)

// Prediction is a tracked pick
type Prediction struct {
	ID         string         `json:"id"`
	FixtureID  int64          `json:"fixture_id"`
	Outcome    models.Outcome `json:"outcome"`
	Confidence float64        `json:"confidence"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Result is the settlement of a tracked pick
type Result struct {
	PredictionID string    `json:"prediction_id"`
	ActualResult string    `json:"actual_result"`
	Won          bool      `json:"won"`
	SettledAt    time.Time `json:"settled_at"`
}

// Performance summarises settled picks
type Performance struct {
	TotalPredictions      int     `json:"total_predictions"`
	Wins                  int     `json:"wins"`
	Losses                int     `json:"losses"`
	Pending               int     `json:"pending"`
	WinRate               float64 `json:"win_rate"`
	ROI                   float64 `json:"roi"`
	ProfitLoss            float64 `json:"profit_loss"`
	AverageConfidence     float64 `json:"average_confidence"`
	BestPerformingBetType string  `json:"best_performing_bet_type"`
	CurrentStreak         int     `json:"current_streak"` // positive for wins, negative for losses
}

// PerformanceTracker is safe for concurrent use
type PerformanceTracker struct {
	odds        float64
	predictions map[string]Prediction
	order       []string
	results     []Result
	settled     map[string]struct{}
	audit       *logger.AuditLogger
	now         func() time.Time
	mu          sync.RWMutex
}

// NewPerformanceTracker creates a tracker pricing wins at the policy's target odds.
func NewPerformanceTracker(policy strategy.Policy, log *logrus.Logger) (*PerformanceTracker, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PerformanceTracker{
		odds:        policy.TargetOdds,
		predictions: make(map[string]Prediction),
		settled:     make(map[string]struct{}),
		audit:       logger.NewAuditLogger(log),
		now:         time.Now,
	}, nil
}

// Record adds a prediction. Recording the same ID twice is an error.
func (t *PerformanceTracker) Record(p Prediction) error {
	if p.ID == "" {
		return fmt.Errorf("%w: empty prediction id", models.ErrInvalidID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.predictions[p.ID]; exists {
		return fmt.Errorf("%w: prediction %s", models.ErrDuplicateKey, p.ID)
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = t.now()
	}
	t.predictions[p.ID] = p
	t.order = append(t.order, p.ID)
	return nil
}

// RecordRecommendation tracks a sized pick under its own ID.
func (t *PerformanceTracker) RecordRecommendation(rec models.Recommendation) error {
	return t.Record(Prediction{
		ID:         rec.ID.String(),
		FixtureID:  rec.Fixture.ID,
		Outcome:    rec.Scenario.Outcome,
		Confidence: rec.Scenario.Confidence,
	})
}

// Settle attaches a result to a recorded prediction.
func (t *PerformanceTracker) Settle(predictionID, actualResult string, won bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settleLocked(predictionID, actualResult, won)
}

func (t *PerformanceTracker) settleLocked(predictionID, actualResult string, won bool) error {
	p, ok := t.predictions[predictionID]
	if !ok {
		return fmt.Errorf("%w: prediction %s", models.ErrNotFound, predictionID)
	}
	if _, done := t.settled[predictionID]; done {
		return fmt.Errorf("%w: prediction %s already settled", models.ErrDuplicateKey, predictionID)
	}

	t.results = append(t.results, Result{
		PredictionID: predictionID,
		ActualResult: actualResult,
		Won:          won,
		SettledAt:    t.now(),
	})
	t.settled[predictionID] = struct{}{}

	pl := -UnitStake
	if won {
		pl = UnitStake * (t.odds - 1)
	}
	t.audit.LogPredictionSettled(predictionID, string(p.Outcome), actualResult, won, pl)
	return nil
}

// SettleFromMatch settles every pending prediction on a finished match and returns how
// many were settled.
func (t *PerformanceTracker) SettleFromMatch(record models.MatchRecord) (int, error) {
	if !record.IsFinished() {
		return 0, fmt.Errorf("%w: match %d has no final score", models.ErrInsufficientData, record.ID)
	}
	actual := fmt.Sprintf("%d-%d", *record.HomeScore, *record.AwayScore)

	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, id := range t.order {
		p := t.predictions[id]
		if p.FixtureID != record.ID {
			continue
		}
		if _, done := t.settled[id]; done {
			continue
		}
		won, ok := strategy.SettleRecord(p.Outcome, record)
		if !ok {
			continue
		}
		if err := t.settleLocked(id, actual, won); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Pending returns predictions still awaiting a result, oldest first.
func (t *PerformanceTracker) Pending() []Prediction {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Prediction, 0, len(t.order)-len(t.settled))
	for _, id := range t.order {
		if _, done := t.settled[id]; !done {
			out = append(out, t.predictions[id])
		}
	}
	return out
}

// Metrics summarises performance. It fails with ErrInsufficientData until at least one
// prediction has been settled.
func (t *PerformanceTracker) Metrics() (Performance, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.results) == 0 {
		return Performance{}, fmt.Errorf("%w: no settled predictions", models.ErrInsufficientData)
	}

	wins := 0
	for _, r := range t.results {
		if r.Won {
			wins++
		}
	}
	total := len(t.results)

	unit := decimal.NewFromFloat(UnitStake)
	staked := unit.Mul(decimal.NewFromInt(int64(total)))
	returned := unit.Mul(decimal.NewFromFloat(t.odds)).Mul(decimal.NewFromInt(int64(wins)))
	pl := returned.Sub(staked)
	hundred := decimal.NewFromInt(100)

	return Performance{
		TotalPredictions:      total,
		Wins:                  wins,
		Losses:                total - wins,
		Pending:               len(t.predictions) - len(t.settled),
		WinRate:               decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(total))).Mul(hundred).Round(2).InexactFloat64(),
		ROI:                   pl.Div(staked).Mul(hundred).Round(2).InexactFloat64(),
		ProfitLoss:            pl.Round(2).InexactFloat64(),
		AverageConfidence:     t.averageConfidenceLocked(),
		BestPerformingBetType: t.bestBetTypeLocked(),
		CurrentStreak:         t.streakLocked(),
	}, nil
}

func (t *PerformanceTracker) averageConfidenceLocked() float64 {
	if len(t.predictions) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, p := range t.predictions {
		sum = sum.Add(decimal.NewFromFloat(p.Confidence))
	}
	return sum.Div(decimal.NewFromInt(int64(len(t.predictions)))).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

type betTypeRecord struct {
	outcome string
	total   int
	wins    int
}

// bestBetTypeLocked picks the outcome with the highest settled hit rate, preferring the
// larger sample and then the name on ties.
func (t *PerformanceTracker) bestBetTypeLocked() string {
	byType := make(map[string]*betTypeRecord)
	for _, r := range t.results {
		outcome := string(t.predictions[r.PredictionID].Outcome)
		rec, ok := byType[outcome]
		if !ok {
			rec = &betTypeRecord{outcome: outcome}
			byType[outcome] = rec
		}
		rec.total++
		if r.Won {
			rec.wins++
		}
	}
	if len(byType) == 0 {
		return noBetType
	}

	records := make([]*betTypeRecord, 0, len(byType))
	for _, rec := range byType {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		// compare wins/total without division
		lhs, rhs := a.wins*b.total, b.wins*a.total
		if lhs != rhs {
			return lhs > rhs
		}
		if a.total != b.total {
			return a.total > b.total
		}
		return a.outcome < b.outcome
	})
	return records[0].outcome
}

func (t *PerformanceTracker) streakLocked() int {
	streak := 0
	for i := len(t.results) - 1; i >= 0; i-- {
		won := t.results[i].Won
		switch {
		case streak == 0 && won:
			streak = 1
		case streak == 0:
			streak = -1
		case streak > 0 && won:
			streak++
		case streak < 0 && !won:
			streak--
		default:
			return streak
		}
	}
	return streak
}
