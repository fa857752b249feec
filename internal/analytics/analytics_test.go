package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/goalline/internal/models"
)

var baseDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func played(day int, home bool, gf, ga int) models.TeamMatch {
	return models.TeamMatch{
		MatchID:      int64(day),
		IsHome:       home,
		GoalsFor:     gf,
		GoalsAgainst: ga,
		Status:       models.MatchStatusFinished,
		MatchDate:    baseDate.AddDate(0, 0, day),
	}
}

func scheduled(day int) models.TeamMatch {
	return models.TeamMatch{
		MatchID:   int64(day),
		Status:    models.MatchStatusScheduled,
		MatchDate: baseDate.AddDate(0, 0, day),
	}
}

func record(id int64, day int, home, away int64, hs, as int) models.MatchRecord {
	return models.MatchRecord{
		ID:         id,
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  models.IntPtr(hs),
		AwayScore:  models.IntPtr(as),
		Status:     models.MatchStatusFinished,
		MatchDate:  baseDate.AddDate(0, 0, day),
	}
}

func TestCalculateEloRating(t *testing.T) {
	t.Run("empty history keeps initial rating", func(t *testing.T) {
		assert.Equal(t, 1500.0, CalculateEloRating(nil, DefaultInitialRating))
		assert.Equal(t, 1620.0, CalculateEloRating([]models.TeamMatch{}, 1620))
	})

	t.Run("single win against equal opponent", func(t *testing.T) {
		got := CalculateEloRating([]models.TeamMatch{played(1, true, 2, 0)}, DefaultInitialRating)
		assert.InDelta(t, 1516.0, got, 1e-9)
	})

	t.Run("draw against equal opponent is neutral", func(t *testing.T) {
		got := CalculateEloRating([]models.TeamMatch{played(1, false, 1, 1)}, DefaultInitialRating)
		assert.InDelta(t, 1500.0, got, 1e-9)
	})

	t.Run("unfinished matches are skipped", func(t *testing.T) {
		got := CalculateEloRating([]models.TeamMatch{scheduled(3), scheduled(4)}, DefaultInitialRating)
		assert.Equal(t, 1500.0, got)
	})

	t.Run("order is chronological regardless of input order", func(t *testing.T) {
		a := []models.TeamMatch{played(1, true, 1, 0), played(2, true, 0, 1)}
		b := []models.TeamMatch{a[1], a[0]}
		assert.InDelta(t, CalculateEloRating(a, 1500), CalculateEloRating(b, 1500), 1e-9)
	})

	t.Run("known opponent rating is used", func(t *testing.T) {
		m := played(1, true, 1, 0)
		m.OpponentRating = 1900
		got := CalculateEloRating([]models.TeamMatch{m}, DefaultInitialRating)
		expected := 1 / (1 + math.Pow(10, 400.0/400))
		assert.InDelta(t, 1500+32*(1-expected), got, 1e-9)
	})
}

func TestCalculateFormIndex(t *testing.T) {
	t.Run("empty history is neutral", func(t *testing.T) {
		assert.Equal(t, NeutralForm, CalculateFormIndex(nil, DefaultFormDecay))
	})

	t.Run("only unfinished matches is neutral", func(t *testing.T) {
		assert.Equal(t, NeutralForm, CalculateFormIndex([]models.TeamMatch{scheduled(1)}, DefaultFormDecay))
	})

	t.Run("all losses is zero", func(t *testing.T) {
		matches := []models.TeamMatch{played(1, true, 0, 1), played(2, false, 0, 3)}
		assert.Equal(t, 0.0, CalculateFormIndex(matches, DefaultFormDecay))
	})

	t.Run("win bonus is capped", func(t *testing.T) {
		got := CalculateFormIndex([]models.TeamMatch{played(1, true, 7, 0)}, DefaultFormDecay)
		assert.InDelta(t, 1.2, got, 1e-9)
	})

	t.Run("unfinished match consumes a position", func(t *testing.T) {
		// newest is scheduled, so the win sits at index 1 and the loss at index 2
		matches := []models.TeamMatch{scheduled(10), played(9, true, 1, 0), played(8, true, 0, 1)}
		w1, w2 := 0.9, 0.81
		want := (1.05*w1 + 0*w2) / (w1 + w2)
		assert.InDelta(t, want, CalculateFormIndex(matches, 0.9), 1e-12)
	})

	t.Run("only ten most recent count", func(t *testing.T) {
		var matches []models.TeamMatch
		for day := 1; day <= 5; day++ {
			matches = append(matches, played(day, true, 0, 2))
		}
		for day := 6; day <= 15; day++ {
			matches = append(matches, played(day, true, 1, 1))
		}
		assert.InDelta(t, 0.5, CalculateFormIndex(matches, 0.9), 1e-12)
	})
}

func TestEfficiencyEstimators(t *testing.T) {
	matches := []models.TeamMatch{
		played(1, true, 3, 0),
		played(2, false, 1, 2),
		scheduled(3),
	}

	attack := CalculateAttackingEfficiency(matches, nil)
	assert.InDelta(t, 2.0, attack.GoalsPerMatch, 1e-9)
	assert.InDelta(t, 0.3, attack.ShotsConversion, 1e-9)
	assert.InDelta(t, 16.0, attack.AttackingThirdEntries, 1e-9)

	defense := CalculateDefensiveSolidity(matches, nil)
	assert.InDelta(t, 1.0, defense.GoalsConcededPerMatch, 1e-9)
	assert.InDelta(t, 0.5, defense.CleanSheetsRatio, 1e-9)
	assert.InDelta(t, 15.0, defense.DefensiveActions, 1e-9)

	assert.Equal(t, models.AttackStats{}, CalculateAttackingEfficiency([]models.TeamMatch{scheduled(1)}, nil))
	assert.Equal(t, models.DefenseStats{}, CalculateDefensiveSolidity(nil, HeuristicMetrics{}))
	assert.Equal(t, 0.0, HeuristicMetrics{}.DefensiveActions(6))
}

func TestCalculateHomeAwayPerformance(t *testing.T) {
	split := CalculateHomeAwayPerformance([]models.TeamMatch{
		played(1, true, 2, 1),
		played(2, true, 1, 1),
		played(3, true, 0, 1),
		scheduled(4),
	})

	assert.Equal(t, 3, split.Home.Matches)
	assert.Equal(t, 1, split.Home.Wins)
	assert.Equal(t, 1, split.Home.Draws)
	assert.Equal(t, 1, split.Home.Losses)
	assert.Equal(t, 3, split.Home.GoalsFor)
	assert.InDelta(t, 4.0/3.0, split.Home.PointsPerMatch, 1e-9)
	assert.Equal(t, models.VenueRecord{}, split.Away)
}

func TestCalculateHeadToHead(t *testing.T) {
	pool := []models.MatchRecord{
		record(1, 1, 10, 20, 2, 0),
		record(2, 2, 20, 10, 0, 1),
		record(3, 3, 20, 10, 1, 1),
		record(4, 4, 10, 30, 0, 5),
	}

	h2h := CalculateHeadToHead(10, 20, pool)
	assert.Equal(t, 3, h2h.TotalMatches)
	assert.Equal(t, 2, h2h.Team1Wins)
	assert.Equal(t, 0, h2h.Team2Wins)
	assert.Equal(t, 1, h2h.Draws)
	assert.Equal(t, models.AdvantageTeam1, h2h.Advantage)

	reversed := CalculateHeadToHead(20, 10, pool)
	assert.Equal(t, models.AdvantageTeam2, reversed.Advantage)

	none := CalculateHeadToHead(10, 99, pool)
	assert.Equal(t, 0, none.TotalMatches)
	assert.Equal(t, models.AdvantageNeutral, none.Advantage)
}

func TestReplayLeagueRatings(t *testing.T) {
	pool := []models.MatchRecord{
		record(2, 2, 20, 10, 0, 0),
		record(1, 1, 10, 20, 1, 0),
	}

	lr := ReplayLeagueRatings(pool)
	require.Contains(t, lr.PreMatch, int64(1))
	assert.Equal(t, PreMatchRatings{Home: 1500, Away: 1500}, lr.PreMatch[1])
	assert.InDelta(t, 1516, lr.PreMatch[2].Away, 1e-9)
	assert.InDelta(t, 1484, lr.PreMatch[2].Home, 1e-9)
	assert.InDelta(t, 3000, lr.Final[10]+lr.Final[20], 1e-9)
	assert.Equal(t, DefaultInitialRating, lr.Rating(99))

	tm, ok := models.ForTeam(pool[0], 10)
	require.True(t, ok)
	assert.InDelta(t, 1484, lr.OpponentRating(tm), 1e-9)
}

func TestEstimateTeamProfile(t *testing.T) {
	history := []models.MatchRecord{
		record(1, 1, 10, 20, 2, 0),
		record(2, 2, 30, 10, 1, 1),
		record(3, 3, 10, 40, 3, 1),
		{ID: 4, HomeTeamID: 50, AwayTeamID: 10, Status: models.MatchStatusScheduled, MatchDate: baseDate.AddDate(0, 0, 9)},
		record(5, 4, 60, 70, 1, 0),
	}

	profile := EstimateTeamProfile(10, history, ProfileOptions{})
	s := profile.Snapshot

	assert.Equal(t, int64(10), s.TeamID)
	assert.Equal(t, 3, s.MatchesPlayed)
	assert.InDelta(t, 2.0, s.GoalsPerMatch, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.GoalsConcededPerMatch, 1e-9)
	assert.InDelta(t, 200.0/3.0, s.WinPercentage, 1e-9)
	assert.Greater(t, s.EloRating, DefaultInitialRating)
	assert.GreaterOrEqual(t, s.FormIndex, 0.0)
	assert.LessOrEqual(t, s.FormIndex, 1.0)
	assert.Equal(t, 2, s.Split.Home.Matches)
	assert.Equal(t, 1, s.Split.Away.Matches)
	assert.Equal(t, 2, profile.Stats.Wins)

	empty := EstimateTeamProfile(99, history, DefaultProfileOptions())
	assert.Equal(t, DefaultInitialRating, empty.Snapshot.EloRating)
	assert.Equal(t, NeutralForm, empty.Snapshot.FormIndex)
	assert.Equal(t, models.TrendStable, empty.Trend)
}

func TestFormIndexIsClampedInSnapshot(t *testing.T) {
	history := []models.MatchRecord{record(1, 1, 10, 20, 6, 0)}
	profile := EstimateTeamProfile(10, history, DefaultProfileOptions())
	assert.Equal(t, 1.0, profile.Snapshot.FormIndex)
}

func TestCalculateTrend(t *testing.T) {
	var matches []models.TeamMatch
	for day := 1; day <= 5; day++ {
		matches = append(matches, played(day, true, 0, 1))
	}
	for day := 6; day <= 10; day++ {
		matches = append(matches, played(day, true, 2, 0))
	}
	assert.Equal(t, models.TrendImproving, CalculateTrend(matches, DefaultFormDecay))

	for i := range matches {
		matches[i].GoalsFor, matches[i].GoalsAgainst = matches[i].GoalsAgainst, matches[i].GoalsFor
	}
	assert.Equal(t, models.TrendDeclining, CalculateTrend(matches, DefaultFormDecay))
}

func TestBuildLeagueTable(t *testing.T) {
	records := []models.MatchRecord{
		record(1, 1, 1, 2, 2, 0),
		record(2, 2, 2, 3, 1, 1),
		record(3, 3, 3, 1, 0, 3),
		{ID: 4, HomeTeamID: 1, AwayTeamID: 4, Status: models.MatchStatusScheduled, MatchDate: baseDate},
	}

	summary := BuildLeagueTable(7, records)
	require.Len(t, summary.Table, 3)
	assert.Equal(t, 4, summary.TeamsCount)
	assert.Equal(t, 3, summary.TotalMatches)
	assert.InDelta(t, 7.0/3.0, summary.GoalsPerMatch, 1e-9)

	top := summary.Table[0]
	assert.Equal(t, int64(1), top.TeamID)
	assert.Equal(t, 1, top.Position)
	assert.Equal(t, 6, top.Points)
	assert.Equal(t, 5, top.GoalDifference)
	assert.InDelta(t, 100.0, top.WinPercentage, 1e-9)
}

func TestAnalyzeMarket(t *testing.T) {
	_, err := AnalyzeMarket(nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	report, err := AnalyzeMarket([]models.MatchRecord{
		record(1, 1, 1, 2, 3, 1),
		record(2, 2, 3, 4, 2, 1),
		record(3, 3, 5, 6, 1, 2),
		record(4, 4, 7, 8, 2, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, report.SampleSize)
	assert.InDelta(t, 50.0, report.HomeWinPct, 1e-9)
	assert.InDelta(t, 100.0, report.Over25Pct, 1e-9)
	assert.InDelta(t, 100.0, report.BTTSPct, 1e-9)
	assert.Len(t, report.Patterns, 3)
	assert.Equal(t, "Low", report.MarketEfficiency)
}
