package database

import (
	"context"
	"fmt"

	"github.com/yourusername/goalline/internal/config"
)

// HealthChecker is implemented by both stores
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Initialize creates a PostgreSQL connection pool and applies the schema.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// InitializeSQLite opens the configured SQLite file.
func InitializeSQLite(ctx context.Context, cfg *config.Config) (*SQLiteDB, error) {
	if cfg.Database.SQLitePath == "" {
		return nil, fmt.Errorf("database.sqlite_path is required for the sqlite driver")
	}
	return OpenSQLite(ctx, cfg.Database.SQLitePath)
}
