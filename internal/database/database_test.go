package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteAppliesSchema(t *testing.T) {
	db := SetupTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.HealthCheck(ctx))

	var tables int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('teams', 'matches')`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)
}

func TestSQLiteRejectsSelfMatch(t *testing.T) {
	db := SetupTestSQLite(t)
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO matches (id, home_team_id, away_team_id, status, match_date, updated_at) VALUES (1, 5, 5, 'scheduled', 0, 0)`)
	assert.Error(t, err)
}

func TestSQLiteWithTransactionRollsBack(t *testing.T) {
	db := SetupTestSQLite(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO teams (id, name, updated_at) VALUES (1, 'Flamengo', 0)`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&n))
	assert.Zero(t, n)
}
