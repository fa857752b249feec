package analytics

import (
	"sort"

	"github.com/yourusername/goalline/internal/models"
)

const (
	// DefaultRatingWindow is the number of most recent matches fed to the rating estimator.
	DefaultRatingWindow = 20
	trendWindow         = 5
)

// ProfileOptions tunes EstimateTeamProfile. Zero values select the defaults.
type ProfileOptions struct {
	InitialRating float64
	FormDecay     float64
	RatingWindow  int
	// Ratings, when set, supplies real opponent ratings for each match.
	Ratings *LeagueRatings
	Metrics SecondaryMetrics
}

// DefaultProfileOptions returns the standard estimator settings.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		InitialRating: DefaultInitialRating,
		FormDecay:     DefaultFormDecay,
		RatingWindow:  DefaultRatingWindow,
		Metrics:       HeuristicMetrics{},
	}
}

func (o ProfileOptions) withDefaults() ProfileOptions {
	d := DefaultProfileOptions()
	if o.InitialRating > 0 {
		d.InitialRating = o.InitialRating
	}
	if o.FormDecay > 0 {
		d.FormDecay = o.FormDecay
	}
	if o.RatingWindow > 0 {
		d.RatingWindow = o.RatingWindow
	}
	if o.Metrics != nil {
		d.Metrics = o.Metrics
	}
	d.Ratings = o.Ratings
	return d
}

// TeamMatches converts the records a team played in into its own perspective,
// newest first. Records not involving the team are dropped.
func TeamMatches(teamID int64, history []models.MatchRecord, ratings *LeagueRatings) []models.TeamMatch {
	matches := make([]models.TeamMatch, 0, len(history))
	for _, r := range history {
		tm, ok := models.ForTeam(r, teamID)
		if !ok {
			continue
		}
		if ratings != nil {
			tm.OpponentRating = ratings.OpponentRating(tm)
		}
		matches = append(matches, tm)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchDate.After(matches[j].MatchDate)
	})
	return matches
}

// EstimateTeamProfile derives a team's snapshot and breakdown from its match history.
// It never fails: sparse histories produce neutral figures.
func EstimateTeamProfile(teamID int64, history []models.MatchRecord, opts ProfileOptions) models.TeamProfile {
	opts = opts.withDefaults()
	matches := TeamMatches(teamID, history, opts.Ratings)

	ratingInput := matches
	if len(ratingInput) > opts.RatingWindow {
		ratingInput = ratingInput[:opts.RatingWindow]
	}

	stats := CalculateTeamStats(matches)
	attack := CalculateAttackingEfficiency(matches, opts.Metrics)
	defense := CalculateDefensiveSolidity(matches, opts.Metrics)

	snapshot := models.TeamSnapshot{
		TeamID:                teamID,
		EloRating:             CalculateEloRating(ratingInput, opts.InitialRating),
		FormIndex:             ClampUnit(CalculateFormIndex(matches, opts.FormDecay)),
		GoalsPerMatch:         attack.GoalsPerMatch,
		GoalsConcededPerMatch: defense.GoalsConcededPerMatch,
		WinPercentage:         stats.WinPercentage,
		MatchesPlayed:         stats.Matches,
		Split:                 CalculateHomeAwayPerformance(matches),
	}

	return models.TeamProfile{
		Snapshot: snapshot,
		Stats:    stats,
		Attack:   attack,
		Defense:  defense,
		Trend:    CalculateTrend(matches, opts.FormDecay),
	}
}

// CalculateTrend compares the form of the five most recent matches with the five before.
func CalculateTrend(matches []models.TeamMatch, decay float64) models.Trend {
	ordered := make([]models.TeamMatch, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MatchDate.After(ordered[j].MatchDate)
	})

	recent := ordered[:min(trendWindow, len(ordered))]
	var previous []models.TeamMatch
	if len(ordered) > trendWindow {
		previous = ordered[trendWindow:min(2*trendWindow, len(ordered))]
	}

	recentForm := CalculateFormIndex(recent, decay)
	previousForm := CalculateFormIndex(previous, decay)
	switch {
	case recentForm > previousForm:
		return models.TrendImproving
	case recentForm < previousForm:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}
