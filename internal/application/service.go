package application

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupapply/internal/cache"
	"github.com/fkhayef/groupapply/internal/database"
	"github.com/fkhayef/groupapply/internal/group"
	"github.com/fkhayef/groupapply/internal/identity"
	"github.com/fkhayef/groupapply/internal/job"
	"github.com/fkhayef/groupapply/pkg/apperr"
)

// Common errors
var (
	ErrApplicationNotFound  = apperr.NotFound("application not found")
	ErrGroupNotFound        = apperr.NotFound("group not found")
	ErrNotAuthorized        = apperr.Unauthorized("not authorized to perform this action")
	ErrJobRequired          = apperr.Validation("job does not exist")
	ErrInvalidStatus        = apperr.Validation("invalid application status")
	ErrJobMismatch          = apperr.Validation("the group applies to a different job")
	ErrNotReady             = apperr.Conflict("the group is not ready to submit")
	ErrInvalidTransition    = apperr.Conflict("application cannot move to that status")
	ErrIdempotencyKeyReused = apperr.Conflict("idempotency key was already used for another submission")
)

func applicantTag(userID string) string { return cache.ActorTag(cache.ClassApplications, userID) }

// applicationWriteTags are the tags busted when a's status or existence
// changes: the application itself, the applicant's listing, and the
// listings of every linked member of its group.
func applicationWriteTags(a *Application, memberUserIDs []string) []string {
	tags := cache.Tags{}.Add(cache.ClassApplications, cache.InstanceTag("application", a.ID), applicantTag(a.ApplicantID))
	for _, id := range memberUserIDs {
		tags = tags.Add(applicantTag(id))
	}
	return tags
}

// JobDirectory looks up the job an application targets
type JobDirectory interface {
	GetByID(ctx context.Context, id string) (*job.Job, error)
}

// Notifier delivers application notifications
type Notifier interface {
	NotifyApplicationInvitation(ctx context.Context, recipients []string, jobID, jobTitle, fromUserName string) int
	NotifyApplicationStatus(ctx context.Context, recipients []string, approved bool, jobID, jobTitle, fromUserName string) int
}

// Service is the submission guard and the application lifecycle
type Service struct {
	db       *sql.DB
	repo     *Repository
	groups   *group.Repository
	jobs     JobDirectory
	notifier Notifier
	cache    cache.Cache
	ttl      time.Duration
}

// NewService creates a new application service
func NewService(db *sql.DB, repo *Repository, groups *group.Repository, jobs JobDirectory, notifier Notifier, c cache.Cache, ttl time.Duration) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		groups:   groups,
		jobs:     jobs,
		notifier: notifier,
		cache:    c,
		ttl:      ttl,
	}
}

// CreateApplication records an application as submitted. It trusts the
// caller's earlier readiness check and does not repeat it, so two calls
// racing on one group both succeed. Group submissions should use
// SubmitGroupApplication.
func (s *Service) CreateApplication(ctx context.Context, actor identity.Actor, jobID string, friendUserIDs []string, groupID *string) (*Application, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrJobRequired
	}
	posting, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return nil, ErrJobRequired
		}
		return nil, err
	}

	var members []string
	if groupID != nil {
		g, err := s.groups.GetByID(ctx, *groupID)
		if err != nil {
			return nil, err
		}
		if g == nil {
			return nil, ErrGroupNotFound
		}
		if g.JobID != jobID {
			return nil, ErrJobMismatch
		}
		members = g.LinkedUserIDs(nil)
	}

	now := time.Now().UTC()
	app := &Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		GroupID:     groupID,
		ApplicantID: actor.ID,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, app, false); err != nil {
		return nil, err
	}

	cache.Bust(ctx, s.cache, applicationWriteTags(app, append(members, friendUserIDs...))...)

	if recipients := without(friendUserIDs, actor.ID); len(recipients) > 0 {
		s.notifier.NotifyApplicationInvitation(ctx, recipients, jobID, posting.Title, actor.Name)
	}

	return app, nil
}

// SubmitGroupApplication submits a group's application at most once. In one
// transaction it reloads the group, checks the caller belongs to it,
// re-checks readiness and either returns the group's live application (or
// the one the caller filed for this group under idempotencyKey) or creates
// it. The bool reports whether a new application was created.
func (s *Service) SubmitGroupApplication(ctx context.Context, actor identity.Actor, groupID string, idempotencyKey *string) (*Application, bool, error) {
	if idempotencyKey != nil && strings.TrimSpace(*idempotencyKey) == "" {
		idempotencyKey = nil
	}

	var (
		app     *Application
		g       *group.Group
		created bool
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := s.repo.WithTx(tx)

		var err error
		g, err = s.groups.WithTx(tx).GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return ErrGroupNotFound
		}
		if !group.AccessFor(actor.ID, g).CanView() {
			return ErrNotAuthorized
		}

		if idempotencyKey != nil {
			existing, err := repo.GetByIdempotencyKey(ctx, *idempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				app, err = replay(existing, g.ID, actor.ID)
				return err
			}
		}

		existing, err := repo.GetActiveForGroup(ctx, g.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			app = existing
			return nil
		}

		if !group.CheckReadiness(g).CanSubmit {
			return ErrNotReady
		}

		now := time.Now().UTC()
		app = &Application{
			ID:             uuid.NewString(),
			JobID:          g.JobID,
			GroupID:        &g.ID,
			ApplicantID:    actor.ID,
			Status:         StatusPending,
			IdempotencyKey: idempotencyKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repo.Create(ctx, app, true); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			// another submission won the race; hand back its row
			existing, rerr := s.resolveConflict(ctx, actor.ID, groupID, idempotencyKey)
			if rerr != nil {
				return nil, false, rerr
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	if !created {
		return app, false, nil
	}

	cache.Bust(ctx, s.cache, applicationWriteTags(app, g.LinkedUserIDs(nil))...)

	participants := without(g.LinkedUserIDs(participating), actor.ID)
	if len(participants) > 0 {
		s.notifier.NotifyApplicationInvitation(ctx, participants, g.JobID, s.jobTitle(ctx, g.JobID), actor.Name)
	}

	return app, true, nil
}

// UpdateApplicationStatus moves an application along its lifecycle. Only
// the applicant may do so. Approval and rejection are announced to the
// group's participating members.
func (s *Service) UpdateApplicationStatus(ctx context.Context, actor identity.Actor, applicationID string, status Status) error {
	switch status {
	case StatusApproved, StatusRejected, StatusCompleted:
	default:
		return ErrInvalidStatus
	}

	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app == nil {
		return ErrApplicationNotFound
	}
	if app.ApplicantID != actor.ID {
		return ErrNotAuthorized
	}
	if app.Status == status {
		return nil
	}
	if !app.Status.CanTransitionTo(status) {
		return ErrInvalidTransition
	}

	changed, err := s.repo.UpdateStatus(ctx, app.ID, app.Status, status)
	if err != nil {
		return err
	}
	if !changed {
		return ErrInvalidTransition
	}
	app.Status = status

	var g *group.Group
	if app.GroupID != nil {
		g, err = s.groups.GetByID(ctx, *app.GroupID)
		if err != nil {
			log.Printf("load group %s of application %s: %v", *app.GroupID, app.ID, err)
		}
	}
	var members []string
	if g != nil {
		members = g.LinkedUserIDs(nil)
	}
	cache.Bust(ctx, s.cache, applicationWriteTags(app, members)...)

	if g != nil && (status == StatusApproved || status == StatusRejected) {
		recipients := without(g.LinkedUserIDs(participating), actor.ID)
		if len(recipients) > 0 {
			s.notifier.NotifyApplicationStatus(ctx, recipients, status == StatusApproved, app.JobID, s.jobTitle(ctx, app.JobID), actor.Name)
		}
	}

	return nil
}

// GetApplications retrieves the applications the caller submitted or whose
// group they belong to. A store failure is logged and yields an empty list.
func (s *Service) GetApplications(ctx context.Context, callerID string) []*Application {
	apps, err := cache.Remember(ctx, s.cache, cache.Key("applications", callerID), s.ttl,
		[]string{cache.ClassApplications, applicantTag(callerID)},
		func() ([]*Application, error) { return s.repo.ListForUser(ctx, callerID) })
	if err != nil {
		log.Printf("list applications of %s: %v", callerID, err)
		return []*Application{}
	}
	return apps
}

func (s *Service) resolveConflict(ctx context.Context, actorID, groupID string, idempotencyKey *string) (*Application, error) {
	if idempotencyKey != nil {
		existing, err := s.repo.GetByIdempotencyKey(ctx, *idempotencyKey)
		if err != nil {
			log.Printf("resolve submission of group %s: %v", groupID, err)
			return nil, nil
		}
		if existing != nil {
			return replay(existing, groupID, actorID)
		}
	}
	existing, err := s.repo.GetActiveForGroup(ctx, groupID)
	if err != nil {
		log.Printf("resolve submission of group %s: %v", groupID, err)
		return nil, nil
	}
	return existing, nil
}

// replay returns the application filed under an idempotency key, provided the
// same caller filed it for the same group.
func replay(existing *Application, groupID, actorID string) (*Application, error) {
	if existing.GroupID == nil || *existing.GroupID != groupID || existing.ApplicantID != actorID {
		return nil, ErrIdempotencyKeyReused
	}
	return existing, nil
}

func (s *Service) jobTitle(ctx context.Context, jobID string) string {
	posting, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return ""
	}
	return posting.Title
}

func participating(m *group.Member) bool {
	return m.Status == group.MemberStatusApproved && m.ParticipationStatus == group.ParticipationParticipating
}

// without returns ids minus exclude and duplicates
func without(ids []string, exclude string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{exclude: true}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
