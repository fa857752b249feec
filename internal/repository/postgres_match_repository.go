package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/goalline/internal/database"
	"github.com/yourusername/goalline/internal/models"
)

const (
	errScanMatch = "failed to scan match: %w"

	matchColumns = `id, home_team_id, away_team_id, home_score, away_score, status,
		match_date, championship_id, championship_name, updated_at`

	pgUpsertMatch = `
		INSERT INTO matches (id, home_team_id, away_team_id, home_score, away_score, status,
			match_date, championship_id, championship_name, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			match_date = EXCLUDED.match_date,
			championship_id = EXCLUDED.championship_id,
			championship_name = EXCLUDED.championship_name,
			updated_at = EXCLUDED.updated_at
		WHERE matches.status <> 'finished'
	`
)

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

func upsertArgs(m *models.MatchRecord) []interface{} {
	updated := m.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	return []interface{}{
		m.ID, m.HomeTeamID, m.AwayTeamID, m.HomeScore, m.AwayScore, string(m.Status),
		m.MatchDate.UTC(), m.ChampionshipID, m.ChampionshipName, updated,
	}
}

// Upsert inserts or refreshes a match
func (r *PostgresMatchRepository) Upsert(ctx context.Context, match *models.MatchRecord) error {
	if _, err := r.db.Exec(ctx, pgUpsertMatch, upsertArgs(match)...); err != nil {
		return fmt.Errorf("failed to upsert match %d: %w", match.ID, err)
	}
	return nil
}

// UpsertBatch upserts matches in a single round trip
func (r *PostgresMatchRepository) UpsertBatch(ctx context.Context, matches []*models.MatchRecord) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, m := range matches {
		batch.Queue(pgUpsertMatch, upsertArgs(m)...)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	written := 0
	for _, m := range matches {
		tag, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("failed to upsert match %d: %w", m.ID, err)
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}

// GetByID retrieves a match by ID
func (r *PostgresMatchRepository) GetByID(ctx context.Context, id int64) (*models.MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanPostgresMatch(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &m, nil
}

// GetByTeam retrieves a team's matches, newest first
func (r *PostgresMatchRepository) GetByTeam(ctx context.Context, teamID int64, start, end time.Time) ([]models.MatchRecord, error) {
	start, end = normalizeRange(start, end)
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE (home_team_id = $1 OR away_team_id = $1) AND match_date >= $2 AND match_date < $3
		ORDER BY match_date DESC, id DESC`
	return r.queryMatches(ctx, query, teamID, start, end)
}

// GetByChampionship retrieves a championship's matches, oldest first
func (r *PostgresMatchRepository) GetByChampionship(ctx context.Context, championshipID int64, start, end time.Time) ([]models.MatchRecord, error) {
	start, end = normalizeRange(start, end)
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE championship_id = $1 AND match_date >= $2 AND match_date < $3
		ORDER BY match_date ASC, id ASC`
	return r.queryMatches(ctx, query, championshipID, start, end)
}

// GetByDateRange retrieves matches within a date range, oldest first
func (r *PostgresMatchRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchRecord, error) {
	start, end = normalizeRange(start, end)
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE match_date >= $1 AND match_date < $2
		ORDER BY match_date ASC, id ASC`
	return r.queryMatches(ctx, query, start, end)
}

// GetUpcoming retrieves scheduled matches ordered by kick-off
func (r *PostgresMatchRepository) GetUpcoming(ctx context.Context, championshipID *int64, from, to time.Time, limit int) ([]models.MatchRecord, error) {
	from, to = normalizeRange(from, to)
	if limit <= 0 {
		limit = 1000
	}
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE status = 'scheduled' AND match_date >= $1 AND match_date < $2
			AND ($3::BIGINT IS NULL OR championship_id = $3)
		ORDER BY match_date ASC, id ASC
		LIMIT $4`
	return r.queryMatches(ctx, query, from, to, championshipID, limit)
}

// GetAll retrieves every stored match, oldest first
func (r *PostgresMatchRepository) GetAll(ctx context.Context) ([]models.MatchRecord, error) {
	return r.queryMatches(ctx, `SELECT `+matchColumns+` FROM matches ORDER BY match_date ASC, id ASC`)
}

func (r *PostgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]models.MatchRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := []models.MatchRecord{}
	for rows.Next() {
		m, err := scanPostgresMatch(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanMatch, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanPostgresMatch(row pgx.Row) (models.MatchRecord, error) {
	var (
		m      models.MatchRecord
		status string
	)
	err := row.Scan(
		&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.HomeScore, &m.AwayScore, &status,
		&m.MatchDate, &m.ChampionshipID, &m.ChampionshipName, &m.UpdatedAt,
	)
	m.Status = models.MatchStatus(status)
	return m, err
}
