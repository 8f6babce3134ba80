// Package dbtest provides a migrated in-memory SQLite store for tests.
package dbtest

import (
	"database/sql"
	"testing"

	"github.com/fkhayef/groupapply/internal/database"
)

// New returns a fresh migrated database that is closed when t finishes
func New(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
