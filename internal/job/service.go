package job

import (
	"context"
	"time"

	"github.com/fkhayef/groupapply/internal/cache"
	"github.com/fkhayef/groupapply/internal/database"
	"github.com/fkhayef/groupapply/pkg/apperr"
)

// Common errors
var (
	ErrJobNotFound = apperr.NotFound("job not found")
	ErrJobExists   = apperr.Conflict("job already exists")
)

func jobTag(id string) string { return cache.InstanceTag("job", id) }

// Service handles job lookups
type Service struct {
	repo  *Repository
	cache cache.Cache
	ttl   time.Duration
}

// NewService creates a new job service
func NewService(repo *Repository, c cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl}
}

// Create registers a job posting
func (s *Service) Create(ctx context.Context, req *CreateJobRequest) (*Job, error) {
	job, err := s.repo.Create(ctx, req)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrJobExists
		}
		return nil, err
	}
	cache.Bust(ctx, s.cache, cache.ClassJobs, jobTag(job.ID))
	return job, nil
}

// GetByID retrieves a job, returning ErrJobNotFound when it is absent
func (s *Service) GetByID(ctx context.Context, id string) (*Job, error) {
	job, err := cache.Remember(ctx, s.cache, cache.Key("job", id), s.ttl,
		[]string{cache.ClassJobs, jobTag(id)},
		func() (*Job, error) { return s.repo.GetByID(ctx, id) })
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Title returns the job's title, or an empty string when it cannot be read
func (s *Service) Title(ctx context.Context, id string) string {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return job.Title
}
