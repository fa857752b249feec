package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/goalline/internal/datasource"
	"github.com/yourusername/goalline/internal/models"
)

// MockDataSource mocks the football data provider
type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) FetchChampionships(ctx context.Context) ([]datasource.Championship, error) {
	args := m.Called(ctx)
	return args.Get(0).([]datasource.Championship), args.Error(1)
}

func (m *MockDataSource) FetchChampionshipMatches(ctx context.Context, championshipID int64) (*datasource.ChampionshipMatches, error) {
	args := m.Called(ctx, championshipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datasource.ChampionshipMatches), args.Error(1)
}

func (m *MockDataSource) FetchTeam(ctx context.Context, teamID int64) (*datasource.APITeam, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*datasource.APITeam), args.Error(1)
}

func (m *MockDataSource) FetchTable(ctx context.Context, championshipID int64) ([]datasource.TableEntry, error) {
	args := m.Called(ctx, championshipID)
	return args.Get(0).([]datasource.TableEntry), args.Error(1)
}

func (m *MockDataSource) Name() string {
	return "mock"
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() {
	c.calls++
}

var (
	palmeiras = datasource.APITeam{ID: 1, Name: "Palmeiras", PopularName: "Palmeiras", Abbreviation: "pal"}
	flamengo  = datasource.APITeam{ID: 2, Name: "Flamengo", PopularName: "Flamengo", Abbreviation: "fla"}
	santos    = datasource.APITeam{ID: 3, Name: "  Santos   FC ", Abbreviation: "SAN"}
)

func payload(homeScore int) *datasource.ChampionshipMatches {
	played := time.Now().AddDate(0, 0, -10).UTC().Truncate(time.Second)
	upcoming := time.Now().AddDate(0, 0, 5).UTC().Truncate(time.Second)
	return &datasource.ChampionshipMatches{
		Championship: datasource.Championship{ID: 10, Name: "Campeonato Brasileiro"},
		Matches: []datasource.APIMatch{
			{ID: 1, Home: palmeiras, Away: flamengo, HomeScore: models.IntPtr(homeScore), AwayScore: models.IntPtr(1),
				Status: "finalizado", KickoffISO: played.Format(time.RFC3339)},
			{ID: 2, Home: flamengo, Away: santos, Status: "agendado", KickoffISO: upcoming.Format(time.RFC3339)},
			// same team on both sides
			{ID: 3, Home: santos, Away: santos, Status: "agendado", KickoffISO: upcoming.Format(time.RFC3339)},
			// no kick-off
			{ID: 4, Home: palmeiras, Away: santos, Status: "agendado"},
		},
	}
}

func TestIngestionService_SyncChampionship(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	source := new(MockDataSource)
	invalidator := &countingInvalidator{}

	source.On("FetchChampionshipMatches", mock.Anything, int64(10)).Return(payload(2), nil).Once()

	svc := NewIngestionService(source, repos.Match, repos.Team, invalidator, quietLogger(), 10)
	m, err := svc.SyncChampionship(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, 4, m.MatchesFetched)
	assert.Equal(t, 2, m.MatchesWritten)
	assert.Equal(t, 3, m.TeamsSynced)
	assert.Equal(t, 2, m.ValidationErrors)
	assert.Equal(t, 0, m.Errors)
	assert.Equal(t, 1, invalidator.calls)

	stored, err := repos.Match.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, stored.IsFinished())
	assert.Equal(t, "Campeonato Brasileiro", stored.ChampionshipName)

	team, err := repos.Team.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Santos FC", team.Name)
	assert.Equal(t, "SAN", team.Abbreviation)

	// a later feed with a different score must not rewrite the finished match
	source.On("FetchChampionshipMatches", mock.Anything, int64(10)).Return(payload(0), nil).Once()
	m, err = svc.SyncChampionship(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, m.MatchesWritten)

	stored, err = repos.Match.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, *stored.HomeScore)

	source.AssertExpectations(t)
}

func TestIngestionService_FetchFailure(t *testing.T) {
	repos := setupRepos(t)
	source := new(MockDataSource)
	notFound := datasource.NewDataSourceError("mock", datasource.ErrCodeNotFound, "resource not found", nil)
	source.On("FetchChampionshipMatches", mock.Anything, int64(404)).Return(nil, notFound)

	svc := NewIngestionService(source, repos.Match, repos.Team, nil, quietLogger(), 0)
	m, err := svc.SyncChampionship(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, datasource.ErrNotFound)
	assert.Equal(t, 1, m.Errors)

	results, err := svc.SyncAll(context.Background(), []int64{404, 404})
	assert.Error(t, err)
	assert.Len(t, results, 2)
}

func TestSnapshotCache(t *testing.T) {
	cache := NewSnapshotCache(time.Minute, time.Minute)
	asOf := time.Date(2025, time.April, 22, 9, 30, 0, 0, time.UTC)

	_, ok := cache.GetProfile(1, asOf)
	assert.False(t, ok)

	cache.SetProfile(1, asOf, models.TeamProfile{Snapshot: models.TeamSnapshot{TeamID: 1, EloRating: 1600}})
	got, ok := cache.GetProfile(1, asOf)
	require.True(t, ok)
	assert.Equal(t, 1600.0, got.Snapshot.EloRating)

	_, ok = cache.GetProfile(1, asOf.Add(time.Hour))
	assert.False(t, ok)

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.InDelta(t, 1.0/3.0, stats.HitRatio, 1e-9)

	cache.Invalidate()
	_, ok = cache.GetProfile(1, asOf)
	assert.False(t, ok)
}

func TestDataNormalizer_Kickoff(t *testing.T) {
	n := NewDataNormalizer(quietLogger())
	champ := datasource.Championship{ID: 10, Name: "Série A"}

	tests := []struct {
		name  string
		match datasource.APIMatch
		want  time.Time
	}{
		{
			name:  "rfc3339",
			match: datasource.APIMatch{KickoffISO: "2025-04-13T21:00:00-03:00"},
			want:  time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "offset without colon",
			match: datasource.APIMatch{KickoffISO: "2025-04-13T16:00:00-0300"},
			want:  time.Date(2025, time.April, 13, 19, 0, 0, 0, time.UTC),
		},
		{
			name:  "local date and time",
			match: datasource.APIMatch{KickoffDate: "13/04/2025", KickoffTime: "18:30"},
			want:  time.Date(2025, time.April, 13, 21, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.match.ID = 7
			tt.match.Status = "agendado"
			got, err := n.NormalizeMatch(tt.match, champ)
			require.NoError(t, err)
			assert.True(t, got.MatchDate.Equal(tt.want), "got %s", got.MatchDate)
			assert.Nil(t, got.HomeScore)
			assert.Equal(t, int64(10), got.ChampionshipID)
		})
	}

	_, err := n.NormalizeMatch(datasource.APIMatch{ID: 8, KickoffISO: "soon"}, champ)
	assert.ErrorIs(t, err, datasource.ErrInvalidData)
}
