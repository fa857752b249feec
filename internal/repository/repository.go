package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/goalline/internal/config"
	"github.com/yourusername/goalline/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Match  MatchRepository
	Team   TeamRepository
	Health database.HealthChecker

	closer func() error
}

// NewRepositories opens the configured store and returns its repositories.
func NewRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := database.InitializeSQLite(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepositories(db)
	case config.DriverPostgres, "":
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositories(db)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// NewPostgresRepositories creates PostgreSQL-backed repositories
func NewPostgresRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:  NewPostgresMatchRepository(db),
		Team:   NewPostgresTeamRepository(db),
		Health: db,
		closer: db.Close,
	}, nil
}

// NewSQLiteRepositories creates SQLite-backed repositories
func NewSQLiteRepositories(db *database.SQLiteDB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:  NewSQLiteMatchRepository(db),
		Team:   NewSQLiteTeamRepository(db),
		Health: db,
		closer: db.Close,
	}, nil
}

// Close releases the underlying store.
func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
