package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/goalline/internal/database"
	"github.com/yourusername/goalline/internal/models"
)

const sqliteUpsertMatch = `
	INSERT INTO matches (id, home_team_id, away_team_id, home_score, away_score, status,
		match_date, championship_id, championship_name, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		home_team_id = excluded.home_team_id,
		away_team_id = excluded.away_team_id,
		home_score = excluded.home_score,
		away_score = excluded.away_score,
		status = excluded.status,
		match_date = excluded.match_date,
		championship_id = excluded.championship_id,
		championship_name = excluded.championship_name,
		updated_at = excluded.updated_at
	WHERE matches.status <> 'finished'
`

// SQLiteMatchRepository implements MatchRepository on the embedded store.
// Timestamps are stored as unix seconds.
type SQLiteMatchRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteMatchRepository creates a new match repository
func NewSQLiteMatchRepository(db *database.SQLiteDB) MatchRepository {
	return &SQLiteMatchRepository{db: db}
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func sqliteUpsertArgs(m *models.MatchRecord) []interface{} {
	updated := m.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	return []interface{}{
		m.ID, m.HomeTeamID, m.AwayTeamID, nullableInt(m.HomeScore), nullableInt(m.AwayScore), string(m.Status),
		m.MatchDate.Unix(), m.ChampionshipID, m.ChampionshipName, updated.Unix(),
	}
}

func upsertSQLiteMatch(ctx context.Context, exec sqlExecer, m *models.MatchRecord) (int64, error) {
	res, err := exec.ExecContext(ctx, sqliteUpsertMatch, sqliteUpsertArgs(m)...)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert match %d: %w", m.ID, err)
	}
	return res.RowsAffected()
}

// Upsert inserts or refreshes a match
func (r *SQLiteMatchRepository) Upsert(ctx context.Context, match *models.MatchRecord) error {
	_, err := upsertSQLiteMatch(ctx, r.db, match)
	return err
}

// UpsertBatch upserts matches in one transaction
func (r *SQLiteMatchRepository) UpsertBatch(ctx context.Context, matches []*models.MatchRecord) (int, error) {
	written := 0
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, m := range matches {
			n, err := upsertSQLiteMatch(ctx, tx, m)
			if err != nil {
				return err
			}
			written += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// GetByID retrieves a match by ID
func (r *SQLiteMatchRepository) GetByID(ctx context.Context, id int64) (*models.MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = ?`

	m, err := scanSQLiteMatch(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

// GetByTeam retrieves a team's matches, newest first
func (r *SQLiteMatchRepository) GetByTeam(ctx context.Context, teamID int64, start, end time.Time) ([]models.MatchRecord, error) {
	start, end = normalizeRange(start, end)
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE (home_team_id = ? OR away_team_id = ?) AND match_date >= ? AND match_date < ?
		ORDER BY match_date DESC, id DESC`
	return r.queryMatches(ctx, query, teamID, teamID, start.Unix(), end.Unix())
}

// GetByChampionship retrieves a championship's matches, oldest first
func (r *SQLiteMatchRepository) GetByChampionship(ctx context.Context, championshipID int64, start, end time.Time) ([]models.MatchRecord, error) {
	start, end = normalizeRange(start, end)
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE championship_id = ? AND match_date >= ? AND match_date < ?
		ORDER BY match_date ASC, id ASC`
	return r.queryMatches(ctx, query, championshipID, start.Unix(), end.Unix())
}

// GetByDateRange retrieves matches within a date range, oldest first
func (r *SQLiteMatchRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	start, end = normalizeRange(start, end)
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE match_date >= ? AND match_date < ?
		ORDER BY match_date ASC, id ASC`
	return r.queryMatches(ctx, query, start.Unix(), end.Unix())
}

// GetUpcoming retrieves scheduled matches ordered by kick-off
func (r *SQLiteMatchRepository) GetUpcoming(ctx context.Context, championshipID *int64, from, to time.Time, limit int) ([]models.MatchRecord, error) {
	from, to = normalizeRange(from, to)
	if limit <= 0 {
		limit = 1000
	}
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status = 'scheduled' AND match_date >= ? AND match_date < ?`
	args := []interface{}{from.Unix(), to.Unix()}
	if championshipID != nil {
		query += ` AND championship_id = ?`
		args = append(args, *championshipID)
	}
	query += ` ORDER BY match_date ASC, id ASC LIMIT ?`
	args = append(args, limit)
	return r.queryMatches(ctx, query, args...)
}

// GetAll retrieves every stored match, oldest first
func (r *SQLiteMatchRepository) GetAll(ctx context.Context) ([]models.MatchRecord, error) {
	return r.queryMatches(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY match_date ASC, id ASC`)
}

func (r *SQLiteMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]models.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := []models.MatchRecord{}
	for rows.Next() {
		m, err := scanSQLiteMatch(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanMatch, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteMatch(row rowScanner) (models.MatchRecord, error) {
	var (
		m                    models.MatchRecord
		status               string
		homeScore, awayScore sql.NullInt64
		matchDate, updatedAt int64
	)
	err := row.Scan(
		&m.ID, &m.HomeTeamID, &m.AwayTeamID, &homeScore, &awayScore, &status,
		&matchDate, &m.ChampionshipID, &m.ChampionshipName, &updatedAt,
	)
	if err != nil {
		return m, err
	}
	m.Status = models.MatchStatus(status)
	m.MatchDate = time.Unix(matchDate, 0).UTC()
	m.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if homeScore.Valid {
		m.HomeScore = models.IntPtr(int(homeScore.Int64))
	}
	if awayScore.Valid {
		m.AwayScore = models.IntPtr(int(awayScore.Int64))
	}
	return m, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
