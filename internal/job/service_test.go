package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fkhayef/groupapply/internal/cache"
	"github.com/fkhayef/groupapply/internal/database/dbtest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(dbtest.New(t)), cache.NewMemory(), time.Minute)
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	if _, err := s.GetByID(ctx, "job-1"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("GetByID(missing) err = %v", err)
	}
	if s.Title(ctx, "job-1") != "" {
		t.Error("title of a missing job should be empty")
	}

	// the negative lookup above was cached; Create must bust it
	if _, err := s.Create(ctx, &CreateJobRequest{ID: "job-1", Title: "Barista"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Title(ctx, "job-1"); got != "Barista" {
		t.Errorf("Title = %q", got)
	}

	if _, err := s.Create(ctx, &CreateJobRequest{ID: "job-1", Title: "Again"}); !errors.Is(err, ErrJobExists) {
		t.Errorf("duplicate create err = %v", err)
	}
}
