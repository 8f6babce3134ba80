package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/groupapply/internal/database"
)

// Repository handles application data persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new application repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository running its statements in tx
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{db: tx}
}

const columns = `id, job_id, group_id, applicant_id, status, idempotency_key, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

// Create inserts an application. A guarded insert claims the group's live
// slot, so a second live application for the same group is a unique
// violation.
func (r *Repository) Create(ctx context.Context, a *Application, guarded bool) error {
	var activeGroupKey *string
	if guarded && a.GroupID != nil && a.Status.Live() {
		activeGroupKey = a.GroupID
	}

	query := `
		INSERT INTO applications (` + columns + `, active_group_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.JobID, a.GroupID, a.ApplicantID, a.Status, a.IdempotencyKey, a.CreatedAt, a.UpdatedAt, activeGroupKey)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Application, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM applications WHERE id = $1`, id)
}

// GetByIdempotencyKey retrieves the application submitted under key
func (r *Repository) GetByIdempotencyKey(ctx context.Context, key string) (*Application, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM applications WHERE idempotency_key = $1`, key)
}

// GetActiveForGroup retrieves the guarded live application of a group
func (r *Repository) GetActiveForGroup(ctx context.Context, groupID string) (*Application, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM applications WHERE active_group_key = $1`, groupID)
}

// ListForUser retrieves the applications userID submitted or whose group
// userID is a linked member of, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]*Application, error) {
	query := `
		SELECT ` + columns + `
		FROM applications
		WHERE applicant_id = $1
		   OR group_id IN (SELECT group_id FROM group_members WHERE user_id = $2)
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []*Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// UpdateStatus moves an application from one status to another. It reports
// false when the application is missing or no longer in from. Leaving the
// live states releases the group's slot.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	release := ""
	if !to.Live() {
		release = `, active_group_key = NULL`
	}
	query := `
		UPDATE applications
		SET status = $1, updated_at = $2` + release + `
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update application status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) getOne(ctx context.Context, query string, args ...interface{}) (*Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func scanApplication(row scanner) (*Application, error) {
	a := &Application{}
	err := row.Scan(
		&a.ID,
		&a.JobID,
		&a.GroupID,
		&a.ApplicantID,
		&a.Status,
		&a.IdempotencyKey,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	return a, nil
}
