package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fkhayef/groupapply/internal/database"
)

// Repository handles job data persistence
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new job repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// Create inserts a job posting
func (r *Repository) Create(ctx context.Context, req *CreateJobRequest) (*Job, error) {
	job := &Job{
		ID:        req.ID,
		Title:     req.Title,
		Company:   req.Company,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO jobs (id, title, company, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, job.ID, job.Title, job.Company, job.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetByID retrieves a job by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Job, error) {
	query := `SELECT id, title, company, created_at FROM jobs WHERE id = $1`

	job := &Job{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&job.ID, &job.Title, &job.Company, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}
