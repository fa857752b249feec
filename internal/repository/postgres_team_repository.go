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

const teamColumns = `id, name, popular_name, abbreviation, logo_url, updated_at`

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Upsert inserts or refreshes a team
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, popular_name, abbreviation, logo_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			popular_name = EXCLUDED.popular_name,
			abbreviation = EXCLUDED.abbreviation,
			logo_url = EXCLUDED.logo_url,
			updated_at = EXCLUDED.updated_at
	`
	updated := team.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, query, team.ID, team.Name, team.PopularName, team.Abbreviation, team.LogoURL, updated)
	if err != nil {
		return fmt.Errorf("failed to upsert team %d: %w", team.ID, err)
	}
	return nil
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id).Scan(
		&team.ID, &team.Name, &team.PopularName, &team.Abbreviation, &team.LogoURL, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetByIDs retrieves the known teams among ids
func (r *PostgresTeamRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Team, error) {
	if len(ids) == 0 {
		return map[int64]*models.Team{}, nil
	}
	return r.queryTeams(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = ANY($1)`, ids)
}

// List retrieves all teams ordered by name
func (r *PostgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	rows, err := r.db.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := []*models.Team{}
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.PopularName, &team.Abbreviation, &team.LogoURL, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *PostgresTeamRepository) queryTeams(ctx context.Context, query string, args ...interface{}) (map[int64]*models.Team, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make(map[int64]*models.Team)
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.PopularName, &team.Abbreviation, &team.LogoURL, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams[team.ID] = team
	}
	return teams, rows.Err()
}
