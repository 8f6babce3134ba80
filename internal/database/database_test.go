package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/fkhayef/groupapply/internal/database"
	"github.com/fkhayef/groupapply/internal/database/dbtest"
)

func TestMigrateIsRepeatable(t *testing.T) {
	db := dbtest.New(t)
	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUniqueViolation(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	now := time.Now().UTC()
	insert := `INSERT INTO jobs (id, title, company, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := db.ExecContext(ctx, insert, "job-1", "Barista", nil, now); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.ExecContext(ctx, insert, "job-1", "Barista", nil, now)
	if !database.IsUniqueViolation(err) {
		t.Fatalf("want unique violation, got %v", err)
	}
	if database.IsUniqueViolation(errors.New("other")) {
		t.Error("plain error reported as unique violation")
	}
}

func TestWithTxRollsBack(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO jobs (id, title, company, created_at) VALUES ($1, $2, $3, $4)`,
			"job-2", "Cook", nil, time.Now().UTC()); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rolled back insert is visible: %d rows", n)
	}
}
