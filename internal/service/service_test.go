package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/goalline/internal/database"
	"github.com/yourusername/goalline/internal/models"
	"github.com/yourusername/goalline/internal/repository"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	repos, err := repository.NewSQLiteRepositories(database.SetupTestSQLite(t))
	require.NoError(t, err)
	return repos
}

func seedTeams(t *testing.T, repos *repository.Repositories, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, repos.Team.Upsert(context.Background(), &models.Team{
			ID:   id,
			Name: "Team " + string(rune('A'+id-1)),
		}))
	}
}

func result(id, home, away int64, hs, as int, date time.Time) *models.MatchRecord {
	return &models.MatchRecord{
		ID: id, HomeTeamID: home, AwayTeamID: away,
		HomeScore: models.IntPtr(hs), AwayScore: models.IntPtr(as),
		Status: models.MatchStatusFinished, MatchDate: date, ChampionshipID: 10, ChampionshipName: "Série A",
	}
}

func fixture(id, home, away int64, date time.Time) *models.MatchRecord {
	return &models.MatchRecord{
		ID: id, HomeTeamID: home, AwayTeamID: away,
		Status: models.MatchStatusScheduled, MatchDate: date, ChampionshipID: 10, ChampionshipName: "Série A",
	}
}
