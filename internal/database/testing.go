package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// SetupTestSQLite opens a throwaway SQLite database that is closed when the test ends.
func SetupTestSQLite(t testing.TB) *SQLiteDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "goalline_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test database: %v", err)
		}
	})
	return db
}
