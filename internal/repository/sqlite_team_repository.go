package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/goalline/internal/database"
	"github.com/yourusername/goalline/internal/models"
)

// SQLiteTeamRepository implements TeamRepository on the embedded store
type SQLiteTeamRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteTeamRepository creates a new team repository
func NewSQLiteTeamRepository(db *database.SQLiteDB) TeamRepository {
	return &SQLiteTeamRepository{db: db}
}

// Upsert inserts or refreshes a team
func (r *SQLiteTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, popular_name, abbreviation, logo_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			popular_name = excluded.popular_name,
			abbreviation = excluded.abbreviation,
			logo_url = excluded.logo_url,
			updated_at = excluded.updated_at
	`
	updated := team.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query, team.ID, team.Name, team.PopularName, team.Abbreviation, team.LogoURL, updated.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert team %d: %w", team.ID, err)
	}
	return nil
}

// GetByID retrieves a team by ID
func (r *SQLiteTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	team, err := scanSQLiteTeam(r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetByIDs retrieves the known teams among ids
func (r *SQLiteTeamRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Team, error) {
	teams := make(map[int64]*models.Team, len(ids))
	if len(ids) == 0 {
		return teams, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	list, err := r.queryTeams(ctx, `SELECT `+teamColumns+` FROM teams WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, team := range list {
		teams[team.ID] = team
	}
	return teams, nil
}

// List retrieves all teams ordered by name
func (r *SQLiteTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	return r.queryTeams(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name ASC`)
}

func (r *SQLiteTeamRepository) queryTeams(ctx context.Context, query string, args ...interface{}) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := []*models.Team{}
	for rows.Next() {
		team, err := scanSQLiteTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func scanSQLiteTeam(row rowScanner) (*models.Team, error) {
	var (
		team      models.Team
		updatedAt int64
	)
	if err := row.Scan(&team.ID, &team.Name, &team.PopularName, &team.Abbreviation, &team.LogoURL, &updatedAt); err != nil {
		return nil, err
	}
	team.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &team, nil
}
