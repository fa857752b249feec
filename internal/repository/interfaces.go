package repository

import (
	"context"
	"time"

	"github.com/yourusername/goalline/internal/models"
)

// MatchRepository defines the interface for match data access. Range queries treat
// start as inclusive and end as exclusive; a zero bound is open.
type MatchRepository interface {
	// Upsert inserts or refreshes a match. A finished match is never overwritten.
	Upsert(ctx context.Context, match *models.MatchRecord) error
	// UpsertBatch upserts many matches and returns how many rows were written.
	UpsertBatch(ctx context.Context, matches []*models.MatchRecord) (int, error)
	GetByID(ctx context.Context, id int64) (*models.MatchRecord, error)
	// GetByTeam returns the team's matches, newest first.
	GetByTeam(ctx context.Context, teamID int64, start, end time.Time) ([]models.MatchRecord, error)
	GetByChampionship(ctx context.Context, championshipID int64, start, end time.Time) ([]models.MatchRecord, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error)
	// GetUpcoming returns scheduled matches in [from, to), optionally for one championship.
	GetUpcoming(ctx context.Context, championshipID *int64, from, to time.Time, limit int) ([]models.MatchRecord, error)
	GetAll(ctx context.Context) ([]models.MatchRecord, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Upsert(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
}

var openEnd = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// normalizeRange replaces open bounds with sentinels usable in SQL.
func normalizeRange(start, end time.Time) (time.Time, time.Time) {
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}
	if end.IsZero() {
		end = openEnd
	}
	return start.UTC(), end.UTC()
}
