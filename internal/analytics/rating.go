// Package analytics derives per-team strength figures from match history.
package analytics

import (
	"math"
	"sort"

	"github.com/yourusername/goalline/internal/models"
)

const (
	// DefaultInitialRating is the starting Elo rating for every team.
	DefaultInitialRating = 1500.0
	// EloKFactor controls how far one result moves a rating.
	EloKFactor = 32.0
)

// ExpectedScore returns the Elo expected score of a side rated current against opponent.
func ExpectedScore(current, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-current)/400))
}

// matchResultScore maps a result to 1, 0.5 or 0.
func matchResultScore(goalsFor, goalsAgainst int) float64 {
	switch {
	case goalsFor > goalsAgainst:
		return 1.0
	case goalsFor == goalsAgainst:
		return 0.5
	default:
		return 0.0
	}
}

// CalculateEloRating replays a team's matches in ascending date order and returns the
// final rating. Unfinished matches are skipped and an unknown opponent is rated 1500.
func CalculateEloRating(matches []models.TeamMatch, initialRating float64) float64 {
	ordered := make([]models.TeamMatch, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MatchDate.Before(ordered[j].MatchDate)
	})

	rating := initialRating
	for _, m := range ordered {
		if !m.Finished() {
			continue
		}
		opponent := m.OpponentRating
		if opponent <= 0 {
			opponent = DefaultInitialRating
		}
		expected := ExpectedScore(rating, opponent)
		actual := matchResultScore(m.GoalsFor, m.GoalsAgainst)
		rating += EloKFactor * (actual - expected)
	}
	return rating
}

// PreMatchRatings holds both sides' ratings before a match was played
type PreMatchRatings struct {
	Home float64
	Away float64
}

// LeagueRatings is the outcome of replaying a whole match pool
type LeagueRatings struct {
	Final    map[int64]float64
	PreMatch map[int64]PreMatchRatings
}

// Rating returns a team's final rating, or the default for unseen teams.
func (lr *LeagueRatings) Rating(teamID int64) float64 {
	if r, ok := lr.Final[teamID]; ok {
		return r
	}
	return DefaultInitialRating
}

// OpponentRating returns the opponent's rating before the given match, or 0 when the
// match was not part of the replay.
func (lr *LeagueRatings) OpponentRating(tm models.TeamMatch) float64 {
	pre, ok := lr.PreMatch[tm.MatchID]
	if !ok {
		return 0
	}
	if tm.IsHome {
		return pre.Away
	}
	return pre.Home
}

// ReplayLeagueRatings walks every finished match of a pool chronologically, updating
// both sides, so that per-team histories can carry real opponent ratings.
func ReplayLeagueRatings(records []models.MatchRecord) *LeagueRatings {
	ordered := make([]models.MatchRecord, 0, len(records))
	for _, r := range records {
		if r.IsFinished() {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MatchDate.Before(ordered[j].MatchDate)
	})

	lr := &LeagueRatings{
		Final:    make(map[int64]float64),
		PreMatch: make(map[int64]PreMatchRatings, len(ordered)),
	}
	for _, r := range ordered {
		home := lr.Rating(r.HomeTeamID)
		away := lr.Rating(r.AwayTeamID)
		lr.PreMatch[r.ID] = PreMatchRatings{Home: home, Away: away}

		homeActual := matchResultScore(*r.HomeScore, *r.AwayScore)
		lr.Final[r.HomeTeamID] = home + EloKFactor*(homeActual-ExpectedScore(home, away))
		lr.Final[r.AwayTeamID] = away + EloKFactor*((1-homeActual)-ExpectedScore(away, home))
	}
	return lr
}
