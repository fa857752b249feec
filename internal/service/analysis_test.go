package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/goalline/internal/allocation"
	"github.com/yourusername/goalline/internal/analytics"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/strategy"
)

var matchDay = time.Date(2025, time.April, 22, 0, 0, 0, 0, time.UTC)

// seedLeague stores a dominant team 1 and a struggling team 2, each with five results,
// plus two fixtures on matchDay. Team 99 is not a known team.
func seedLeague(t *testing.T) (*AnalysisService, *SnapshotCache) {
	t.Helper()
	ctx := context.Background()
	repos := setupRepos(t)
	seedTeams(t, repos, 1, 2, 3, 4)

	var records []*models.MatchRecord
	for i := 0; i < 5; i++ {
		day := time.Date(2025, time.March, 1+i*7, 19, 0, 0, 0, time.UTC)
		records = append(records,
			result(int64(10+i), 1, 3, 3, 0, day),
			result(int64(20+i), 4, 2, 3, 0, day),
		)
	}
	records = append(records,
		fixture(100, 1, 2, matchDay.Add(15*time.Hour)),
		fixture(101, 1, 99, matchDay.Add(18*time.Hour)),
	)
	_, err := repos.Match.UpsertBatch(ctx, records)
	require.NoError(t, err)

	log := quietLogger()
	scanner, err := strategy.NewScanner(strategy.DefaultPolicy(), log)
	require.NoError(t, err)
	allocator, err := allocation.NewAllocator(allocation.DefaultPolicy(), log)
	require.NoError(t, err)

	cache := NewSnapshotCache(time.Minute, time.Minute)
	svc := NewAnalysisService(repos.Match, repos.Team, scanner, allocator, cache, AnalysisOptions{
		Profile:    analytics.DefaultProfileOptions(),
		MinHistory: 3,
	}, log)
	return svc, cache
}

func TestAnalysisService_TeamAnalysis(t *testing.T) {
	svc, cache := seedLeague(t)
	ctx := context.Background()

	got, err := svc.TeamAnalysis(ctx, 1, matchDay)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Team.ID)
	assert.Equal(t, 5, got.Profile.Snapshot.MatchesPlayed)
	assert.InDelta(t, 100.0, got.Profile.Snapshot.WinPercentage, 1e-9)
	assert.InDelta(t, 3.0, got.Profile.Snapshot.GoalsPerMatch, 1e-9)
	assert.Greater(t, got.Profile.Snapshot.EloRating, analytics.DefaultInitialRating)
	require.Len(t, got.RecentMatches, 5)
	assert.True(t, got.RecentMatches[0].MatchDate.After(got.RecentMatches[4].MatchDate))

	_, err = svc.TeamAnalysis(ctx, 1, matchDay)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cache.Stats().Hits, uint64(1))

	_, err = svc.TeamAnalysis(ctx, 99, matchDay)
	assert.ErrorIs(t, err, models.ErrMissingEntity)
}

func TestAnalysisService_AnalyzeMatch(t *testing.T) {
	svc, _ := seedLeague(t)
	ctx := context.Background()

	got, err := svc.AnalyzeMatch(ctx, 1, 2, matchDay)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, got.Probabilities.Sum(), 1e-9)
	assert.Greater(t, got.Probabilities.HomeWin, got.Probabilities.AwayWin)
	assert.Equal(t, 0, got.HeadToHead.TotalMatches)
	require.NotNil(t, got.BestScenario)
	assert.Equal(t, models.OutcomeHomeOrDraw, got.BestScenario.Outcome)
	assert.NotEmpty(t, got.Scenarios)

	t.Run("unknown team", func(t *testing.T) {
		_, err := svc.AnalyzeMatch(ctx, 1, 99, matchDay)
		assert.ErrorIs(t, err, models.ErrMissingEntity)
	})

	t.Run("same team", func(t *testing.T) {
		_, err := svc.AnalyzeMatch(ctx, 1, 1, matchDay)
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestAnalysisService_FindOpportunities(t *testing.T) {
	svc, _ := seedLeague(t)

	got, err := svc.FindOpportunities(context.Background(), nil, matchDay.AddDate(0, 0, -1), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Scan.Scanned)
	require.Len(t, got.Scan.Qualifying, 1)
	assert.Equal(t, int64(100), got.Scan.Qualifying[0].Fixture.ID)
	require.Len(t, got.Scan.Skipped, 1)
	assert.Equal(t, int64(99), got.Scan.Skipped[0].TeamID)
	assert.Contains(t, got.Teams, int64(1))

	_, err = svc.FindOpportunities(context.Background(), nil, matchDay, 0)
	assert.Error(t, err)
}

func TestAnalysisService_DailyRecommendations(t *testing.T) {
	svc, _ := seedLeague(t)

	recs, report, err := svc.DailyRecommendations(context.Background(), 1000, matchDay.Add(9*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Len(t, recs.Recommendations, 1)

	rec := recs.Recommendations[0]
	assert.Equal(t, int64(100), rec.Fixture.ID)
	assert.Equal(t, models.OutcomeHomeOrDraw, rec.Scenario.Outcome)
	assert.InDelta(t, 50.0, rec.Stake, 1e-9)
	assert.InDelta(t, 12.5, rec.PotentialProfit, 1e-9)
	assert.True(t, recs.Date.Equal(matchDay))

	_, _, err = svc.DailyRecommendations(context.Background(), 0, matchDay)
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
}

func TestAnalysisService_DailyRecommendationsLocalDay(t *testing.T) {
	svc, _ := seedLeague(t)
	ctx := context.Background()
	brt := time.FixedZone("BRT", -3*60*60)

	// 21:30 in Brasília is already the 23rd in UTC
	late := fixture(102, 4, 3, time.Date(2025, time.April, 22, 21, 30, 0, 0, brt))
	require.NoError(t, svc.matches.Upsert(ctx, late))

	day := time.Date(2025, time.April, 22, 0, 0, 0, 0, brt)
	recs, report, err := svc.DailyRecommendations(ctx, 1000, day)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	require.Len(t, recs.Recommendations, 2)
	ids := []int64{recs.Recommendations[0].Fixture.ID, recs.Recommendations[1].Fixture.ID}
	assert.ElementsMatch(t, []int64{100, 102}, ids)
	assert.True(t, recs.Date.Equal(day))
	assert.Equal(t, brt, recs.Date.Location())

	utc, report, err := svc.DailyRecommendations(ctx, 1000, matchDay)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	require.Len(t, utc.Recommendations, 1)
	assert.Equal(t, int64(100), utc.Recommendations[0].Fixture.ID)
}

func TestAnalysisService_SkipReasons(t *testing.T) {
	svc, _ := seedLeague(t)
	ctx := context.Background()

	require.NoError(t, svc.teams.Upsert(ctx, &models.Team{ID: 5, Name: "Newcomers"}))
	require.NoError(t, svc.matches.Upsert(ctx, result(30, 5, 3, 1, 0, time.Date(2025, time.March, 30, 19, 0, 0, 0, time.UTC))))
	require.NoError(t, svc.matches.Upsert(ctx, fixture(103, 5, 2, matchDay.Add(20*time.Hour))))

	got, err := svc.FindOpportunities(ctx, nil, matchDay.AddDate(0, 0, -1), 3)
	require.NoError(t, err)
	require.Len(t, got.Scan.Skipped, 2)

	reasons := make(map[int64]string)
	for _, skipped := range got.Scan.Skipped {
		reasons[skipped.TeamID] = skipped.Reason
	}
	assert.Equal(t, strategy.SkipMissingTeam, reasons[99])
	assert.Equal(t, strategy.SkipInsufficientHistory, reasons[5])
}

func TestAnalysisService_LeagueAnalysis(t *testing.T) {
	svc, _ := seedLeague(t)

	got, err := svc.LeagueAnalysis(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Summary.TotalMatches)
	require.NotEmpty(t, got.Summary.Table)
	assert.Equal(t, int64(1), got.Summary.Table[0].TeamID)
	assert.Equal(t, 15, got.Summary.Table[0].Points)
	require.NotNil(t, got.Market)
	assert.Equal(t, 10, got.Market.SampleSize)
	assert.Len(t, got.Teams, 4)

	_, err = svc.LeagueAnalysis(context.Background(), 77)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnalysisService_ReplayOpponentRatings(t *testing.T) {
	svc, _ := seedLeague(t)
	svc.opts.ReplayOpponentRatings = true

	got, err := svc.TeamAnalysis(context.Background(), 2, matchDay)
	require.NoError(t, err)
	assert.Less(t, got.Profile.Snapshot.EloRating, analytics.DefaultInitialRating)
}
