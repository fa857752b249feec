package strategy

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/goalline/internal/logger"
	"github.com/yourusername/goalline/internal/metrics"
	"github.com/yourusername/goalline/internal/models"
)

// Scanner evaluates scenario rules against fixtures
type Scanner struct {
	policy  Policy
	rules   []Rule
	workers int
	log     *logger.AnalysisLogger
}

// Skip reasons reported in SkippedFixture.Reason.
const (
	SkipMissingTeam         = "missing_team"
	SkipInsufficientHistory = "insufficient_history"
)

// Exclusions maps teams that exist but cannot be profiled to a skip reason.
type Exclusions map[int64]string

// SkippedFixture records a fixture left out of a batch scan
type SkippedFixture struct {
	FixtureID int64  `json:"fixture_id"`
	TeamID    int64  `json:"team_id"`
	Reason    string `json:"reason"`
}

// ScanReport is the result of a batch scan
type ScanReport struct {
	Scanned    int                      `json:"scanned"`
	Qualifying []models.FixtureScenario `json:"qualifying"`
	Skipped    []SkippedFixture         `json:"skipped"`
}

// NewScanner creates a scanner with the default rules.
func NewScanner(policy Policy, log *logrus.Logger) (*Scanner, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scanner{
		policy:  policy,
		rules:   DefaultRules(),
		workers: runtime.GOMAXPROCS(0),
		log:     logger.NewAnalysisLogger(log),
	}, nil
}

// WithRules replaces the rule set.
func (s *Scanner) WithRules(rules ...Rule) *Scanner {
	s.rules = rules
	return s
}

// WithWorkers bounds the batch fan-out.
func (s *Scanner) WithWorkers(n int) *Scanner {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Policy returns the pricing policy.
func (s *Scanner) Policy() Policy {
	return s.policy
}

// Scan evaluates every rule for one fixture and returns the scenarios ordered by
// confidence, then expected value, then rule order. It is a pure function of its inputs.
func (s *Scanner) Scan(fixture models.Fixture, home, away models.TeamSnapshot) []models.BettingScenario {
	ctx := Context{Fixture: fixture, Home: home, Away: away, Policy: s.policy}

	scenarios := make([]models.BettingScenario, 0, len(s.rules))
	for _, rule := range s.rules {
		if scenario, ok := rule.Evaluate(ctx); ok {
			scenarios = append(scenarios, scenario)
		}
	}
	sortScenarios(scenarios)
	return scenarios
}

// Best returns the top scenario when it clears the confidence floor.
func (s *Scanner) Best(scenarios []models.BettingScenario) (models.BettingScenario, bool) {
	if len(scenarios) == 0 || !s.policy.Qualifies(scenarios[0]) {
		return models.BettingScenario{}, false
	}
	return scenarios[0], true
}

// ScanFixture scans a single fixture. A team missing from snapshots is an error.
func (s *Scanner) ScanFixture(fixture models.Fixture, snapshots map[int64]models.TeamSnapshot) ([]models.BettingScenario, error) {
	home, away, missing, ok := lookupTeams(fixture, snapshots)
	if !ok {
		return nil, fmt.Errorf("scan fixture %d: %w", fixture.ID, models.MissingTeam(missing))
	}
	return s.Scan(fixture, home, away), nil
}

// FindHighConfidenceBets scans fixtures concurrently and returns every fixture whose
// best scenario clears the floor, ordered by confidence then expected value. Fixtures
// with a missing team are skipped and reported rather than failing the batch.
func (s *Scanner) FindHighConfidenceBets(ctx context.Context, fixtures []models.Fixture, snapshots map[int64]models.TeamSnapshot) (*ScanReport, error) {
	return s.FindHighConfidenceBetsExcluding(ctx, fixtures, snapshots, nil)
}

// FindHighConfidenceBetsExcluding is FindHighConfidenceBets where teams absent from
// snapshots but present in excluded are skipped with their own reason instead of
// SkipMissingTeam.
func (s *Scanner) FindHighConfidenceBetsExcluding(ctx context.Context, fixtures []models.Fixture, snapshots map[int64]models.TeamSnapshot, excluded Exclusions) (*ScanReport, error) {
	start := time.Now()

	type outcome struct {
		pick    *models.FixtureScenario
		skipped *SkippedFixture
	}
	results := make([]outcome, len(fixtures))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range fixtures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fixture := fixtures[i]
			home, away, missing, ok := lookupTeams(fixture, snapshots)
			if !ok {
				reason, ok := excluded[missing]
				if !ok {
					reason = SkipMissingTeam
				}
				results[i].skipped = &SkippedFixture{FixtureID: fixture.ID, TeamID: missing, Reason: reason}
				return nil
			}
			if best, ok := s.Best(s.Scan(fixture, home, away)); ok {
				results[i].pick = &models.FixtureScenario{Fixture: fixture, Scenario: best}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan fixtures: %w", err)
	}

	report := &ScanReport{Scanned: len(fixtures)}
	for _, r := range results {
		switch {
		case r.skipped != nil:
			report.Skipped = append(report.Skipped, *r.skipped)
			s.log.LogFixtureSkipped(r.skipped.FixtureID, r.skipped.TeamID, r.skipped.Reason)
			metrics.FixturesSkippedTotal.Inc()
		case r.pick != nil:
			report.Qualifying = append(report.Qualifying, *r.pick)
			metrics.RecordScenario(string(r.pick.Scenario.Outcome), string(r.pick.Scenario.RiskLevel))
			metrics.RecordScenarioConfidence(string(r.pick.Scenario.Outcome), r.pick.Scenario.Confidence)
		}
	}
	SortFixtureScenarios(report.Qualifying)

	elapsed := time.Since(start)
	metrics.RecordFixtureScan(len(fixtures), elapsed)
	s.log.LogScanCompleted(len(fixtures), len(report.Qualifying), len(report.Skipped), float64(elapsed.Milliseconds()))
	return report, nil
}

// SortFixtureScenarios orders picks by confidence, then expected value, keeping input
// order for ties.
func SortFixtureScenarios(picks []models.FixtureScenario) {
	sort.SliceStable(picks, func(i, j int) bool {
		return scenarioLess(picks[i].Scenario, picks[j].Scenario)
	})
}

func sortScenarios(scenarios []models.BettingScenario) {
	sort.SliceStable(scenarios, func(i, j int) bool {
		return scenarioLess(scenarios[i], scenarios[j])
	})
}

func scenarioLess(a, b models.BettingScenario) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.ExpectedValue > b.ExpectedValue
}

func lookupTeams(f models.Fixture, snapshots map[int64]models.TeamSnapshot) (home, away models.TeamSnapshot, missing int64, ok bool) {
	home, ok = snapshots[f.HomeTeamID]
	if !ok {
		return home, away, f.HomeTeamID, false
	}
	away, ok = snapshots[f.AwayTeamID]
	if !ok {
		return home, away, f.AwayTeamID, false
	}
	return home, away, 0, true
}
