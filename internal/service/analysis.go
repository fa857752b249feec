package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/goalline/internal/allocation"
	"github.com/yourusername/goalline/internal/analytics"
	"github.com/yourusername/goalline/internal/logger"
	"github.com/yourusername/goalline/internal/metrics"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/prediction"
	"github.com/yourusername/goalline/internal/repository"
	"github.com/yourusername/goalline/internal/strategy"
)

const recentMatchesShown = 5

// AnalysisOptions configures the analysis service
type AnalysisOptions struct {
	Profile               analytics.ProfileOptions
	ReplayOpponentRatings bool
	// MinHistory is the number of finished matches a team needs before its
	// fixtures are scanned in batch entry points.
	MinHistory int
}

// TeamAnalysis is the full breakdown for a single team
type TeamAnalysis struct {
	Team          *models.Team       `json:"team"`
	Profile       models.TeamProfile `json:"profile"`
	RecentMatches []models.TeamMatch `json:"recent_matches"`
	AsOf          time.Time          `json:"as_of"`
}

// MatchAnalysis is the full breakdown for a fixture
type MatchAnalysis struct {
	HomeTeam          *models.Team                   `json:"home_team"`
	AwayTeam          *models.Team                   `json:"away_team"`
	HomeProfile       models.TeamProfile             `json:"home_profile"`
	AwayProfile       models.TeamProfile             `json:"away_profile"`
	HeadToHead        models.HeadToHead              `json:"head_to_head"`
	Probabilities     models.ProbabilityDistribution `json:"probabilities"`
	ValueBets         []models.ValueBet              `json:"value_bets"`
	TopRecommendation *models.ValueBet               `json:"top_recommendation,omitempty"`
	Scenarios         []models.BettingScenario       `json:"scenarios"`
	BestScenario      *models.BettingScenario        `json:"best_scenario,omitempty"`
	AnalyzedAt        time.Time                      `json:"analyzed_at"`
}

// OpportunityReport lists qualifying fixtures in a window
type OpportunityReport struct {
	From  time.Time             `json:"from"`
	To    time.Time             `json:"to"`
	Scan  *strategy.ScanReport  `json:"scan"`
	Teams map[int64]models.Team `json:"teams"`
}

// LeagueAnalysis is a championship's standings plus its market tendencies
type LeagueAnalysis struct {
	Summary analytics.LeagueSummary `json:"summary"`
	Market  *analytics.MarketReport `json:"market,omitempty"`
	Teams   map[int64]models.Team   `json:"teams"`
}

// AnalysisService turns stored history into profiles, predictions and picks
type AnalysisService struct {
	matches   repository.MatchRepository
	teams     repository.TeamRepository
	scanner   *strategy.Scanner
	allocator *allocation.Allocator
	cache     *SnapshotCache
	opts      AnalysisOptions
	analysis  *logger.AnalysisLogger
	logger    *logrus.Entry
	now       func() time.Time
}

// NewAnalysisService creates a new analysis service. cache may be nil.
func NewAnalysisService(
	matches repository.MatchRepository,
	teams repository.TeamRepository,
	scanner *strategy.Scanner,
	allocator *allocation.Allocator,
	cache *SnapshotCache,
	opts AnalysisOptions,
	log *logrus.Logger,
) *AnalysisService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AnalysisService{
		matches:   matches,
		teams:     teams,
		scanner:   scanner,
		allocator: allocator,
		cache:     cache,
		opts:      opts,
		analysis:  logger.NewAnalysisLogger(log),
		logger:    log.WithField("component", "analysis"),
		now:       time.Now,
	}
}

// Policy returns the scanner policy
func (s *AnalysisService) Policy() strategy.Policy {
	return s.scanner.Policy()
}

// TeamAnalysis builds a team's profile from every match before asOf.
func (s *AnalysisService) TeamAnalysis(ctx context.Context, teamID int64, asOf time.Time) (*TeamAnalysis, error) {
	asOf = s.asOf(asOf)
	team, err := s.lookupTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	history, err := s.matches.GetByTeam(ctx, teamID, time.Time{}, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for team %d: %w", teamID, err)
	}
	profile, err := s.profile(ctx, teamID, asOf, history)
	if err != nil {
		return nil, err
	}

	recent := make([]models.TeamMatch, 0, recentMatchesShown)
	for _, tm := range analytics.TeamMatches(teamID, history, nil) {
		if !tm.Finished() {
			continue
		}
		recent = append(recent, tm)
		if len(recent) == recentMatchesShown {
			break
		}
	}

	return &TeamAnalysis{Team: team, Profile: profile, RecentMatches: recent, AsOf: asOf}, nil
}

// AnalyzeMatch prices a fixture between two known teams. Unknown teams yield
// models.ErrMissingEntity.
func (s *AnalysisService) AnalyzeMatch(ctx context.Context, homeID, awayID int64, asOf time.Time) (*MatchAnalysis, error) {
	if homeID == awayID {
		return nil, models.NewValidationError("same_team", "home and away team must differ")
	}
	asOf = s.asOf(asOf)

	home, err := s.lookupTeam(ctx, homeID)
	if err != nil {
		return nil, err
	}
	away, err := s.lookupTeam(ctx, awayID)
	if err != nil {
		return nil, err
	}

	homeHistory, err := s.matches.GetByTeam(ctx, homeID, time.Time{}, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for team %d: %w", homeID, err)
	}
	awayHistory, err := s.matches.GetByTeam(ctx, awayID, time.Time{}, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for team %d: %w", awayID, err)
	}

	homeProfile, err := s.profile(ctx, homeID, asOf, homeHistory)
	if err != nil {
		return nil, err
	}
	awayProfile, err := s.profile(ctx, awayID, asOf, awayHistory)
	if err != nil {
		return nil, err
	}

	h2h := analytics.CalculateHeadToHead(homeID, awayID, homeHistory)
	dist := prediction.EstimateFixtureProbabilities(homeProfile.Snapshot, awayProfile.Snapshot, &h2h)
	valueBets, err := prediction.FindValueBets(dist, s.Policy().TargetOdds)
	if err != nil {
		return nil, err
	}

	fixture := models.Fixture{HomeTeamID: homeID, AwayTeamID: awayID, MatchDate: asOf}
	scenarios := s.scanner.Scan(fixture, homeProfile.Snapshot, awayProfile.Snapshot)

	result := &MatchAnalysis{
		HomeTeam:          home,
		AwayTeam:          away,
		HomeProfile:       homeProfile,
		AwayProfile:       awayProfile,
		HeadToHead:        h2h,
		Probabilities:     dist,
		ValueBets:         valueBets,
		TopRecommendation: prediction.TopRecommendation(valueBets),
		Scenarios:         scenarios,
		AnalyzedAt:        s.now().UTC(),
	}
	if best, ok := s.scanner.Best(scenarios); ok {
		result.BestScenario = &best
	}

	s.analysis.LogMatchAnalysis(homeID, awayID, dist.HomeWin, dist.Draw, dist.AwayWin, len(valueBets))
	return result, nil
}

// FindOpportunities scans scheduled fixtures in [from, from+daysAhead). Fixtures with an
// unknown team are skipped and reported.
func (s *AnalysisService) FindOpportunities(ctx context.Context, championshipID *int64, from time.Time, daysAhead int) (*OpportunityReport, error) {
	if daysAhead <= 0 {
		return nil, models.NewValidationError("days_ahead", "days_ahead must be positive")
	}
	from = s.asOf(from)
	to := from.AddDate(0, 0, daysAhead)

	fixtures, err := s.matches.GetUpcoming(ctx, championshipID, from, to, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming fixtures: %w", err)
	}

	report, teams, err := s.scan(ctx, fixtures, from)
	if err != nil {
		return nil, err
	}
	return &OpportunityReport{From: from, To: to, Scan: report, Teams: teams}, nil
}

// DailyRecommendations scans the day's fixtures and sizes the best picks against bankroll.
// The day is the calendar date of day in its own location.
func (s *AnalysisService) DailyRecommendations(ctx context.Context, bankroll float64, day time.Time) (*models.DailyRecommendations, *strategy.ScanReport, error) {
	if bankroll <= 0 {
		return nil, nil, models.InvalidConfigf("bankroll must be positive, got %v", bankroll)
	}
	if day.IsZero() {
		day = s.now()
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	fixtures, err := s.matches.GetUpcoming(ctx, nil, start.UTC(), end.UTC(), 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load fixtures for %s: %w", start.Format("2006-01-02"), err)
	}

	report, _, err := s.scan(ctx, fixtures, s.asOf(start))
	if err != nil {
		return nil, nil, err
	}

	recs, err := s.allocator.Allocate(report.Qualifying, bankroll, start)
	if err != nil {
		return nil, nil, err
	}
	return recs, report, nil
}

// LeagueAnalysis builds standings and market tendencies for a championship.
func (s *AnalysisService) LeagueAnalysis(ctx context.Context, championshipID int64) (*LeagueAnalysis, error) {
	records, err := s.matches.GetByChampionship(ctx, championshipID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load championship %d: %w", championshipID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("championship %d: %w", championshipID, models.ErrNotFound)
	}

	result := &LeagueAnalysis{Summary: analytics.BuildLeagueTable(championshipID, records)}

	market, err := analytics.AnalyzeMarket(records)
	switch {
	case err == nil:
		result.Market = &market
	case !errors.Is(err, models.ErrInsufficientData):
		return nil, err
	}

	ids := make([]int64, 0, len(result.Summary.Table))
	for _, row := range result.Summary.Table {
		ids = append(ids, row.TeamID)
	}
	result.Teams, err = s.teamLabels(ctx, ids)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scan builds snapshots for every team in fixtures and runs the batch scanner.
func (s *AnalysisService) scan(ctx context.Context, records []models.MatchRecord, asOf time.Time) (*strategy.ScanReport, map[int64]models.Team, error) {
	ids := make([]int64, 0, 2*len(records))
	seen := make(map[int64]struct{})
	fixtures := make([]models.Fixture, 0, len(records))
	for i := range records {
		fixtures = append(fixtures, records[i].Fixture())
		for _, id := range []int64{records[i].HomeTeamID, records[i].AwayTeamID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	known, err := s.teamLabels(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	snapshots := make(map[int64]models.TeamSnapshot, len(known))
	excluded := make(strategy.Exclusions)
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			continue
		}
		history, err := s.matches.GetByTeam(ctx, id, time.Time{}, asOf)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load history for team %d: %w", id, err)
		}
		profile, err := s.profile(ctx, id, asOf, history)
		if err != nil {
			return nil, nil, err
		}
		if profile.Snapshot.MatchesPlayed < s.opts.MinHistory {
			excluded[id] = strategy.SkipInsufficientHistory
			continue
		}
		snapshots[id] = profile.Snapshot
	}

	report, err := s.scanner.FindHighConfidenceBetsExcluding(ctx, fixtures, snapshots, excluded)
	if err != nil {
		return nil, nil, err
	}
	return report, known, nil
}

func (s *AnalysisService) profile(ctx context.Context, teamID int64, asOf time.Time, history []models.MatchRecord) (models.TeamProfile, error) {
	if s.cache != nil {
		if p, ok := s.cache.GetProfile(teamID, asOf); ok {
			s.analysis.LogProfileBuilt(teamID, p.Snapshot.MatchesPlayed, p.Snapshot.EloRating, p.Snapshot.FormIndex, true)
			return p, nil
		}
	}

	start := time.Now()
	opts := s.opts.Profile
	if s.opts.ReplayOpponentRatings {
		ratings, err := s.leagueRatings(ctx, asOf)
		if err != nil {
			return models.TeamProfile{}, err
		}
		opts.Ratings = ratings
	}

	p := analytics.EstimateTeamProfile(teamID, history, opts)
	metrics.RecordProfileBuild(time.Since(start))
	s.analysis.LogProfileBuilt(teamID, p.Snapshot.MatchesPlayed, p.Snapshot.EloRating, p.Snapshot.FormIndex, false)

	if s.cache != nil {
		s.cache.SetProfile(teamID, asOf, p)
	}
	return p, nil
}

func (s *AnalysisService) leagueRatings(ctx context.Context, asOf time.Time) (*analytics.LeagueRatings, error) {
	if s.cache != nil {
		if r, ok := s.cache.GetRatings(asOf); ok {
			return r, nil
		}
	}
	records, err := s.matches.GetByDateRange(ctx, time.Time{}, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating pool: %w", err)
	}
	ratings := analytics.ReplayLeagueRatings(records)
	if s.cache != nil {
		s.cache.SetRatings(asOf, ratings)
	}
	return ratings, nil
}

func (s *AnalysisService) lookupTeam(ctx context.Context, teamID int64) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.MissingTeam(teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	return team, nil
}

func (s *AnalysisService) teamLabels(ctx context.Context, ids []int64) (map[int64]models.Team, error) {
	found, err := s.teams.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	labels := make(map[int64]models.Team, len(found))
	for id, t := range found {
		labels[id] = *t
	}
	return labels, nil
}

func (s *AnalysisService) asOf(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC().Truncate(time.Minute)
}
