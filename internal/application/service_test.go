package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fkhayef/groupapply/internal/cache"
	"github.com/fkhayef/groupapply/internal/database/dbtest"
	"github.com/fkhayef/groupapply/internal/group"
	"github.com/fkhayef/groupapply/internal/identity"
	"github.com/fkhayef/groupapply/internal/job"
	"github.com/fkhayef/groupapply/internal/notification"
	"github.com/fkhayef/groupapply/internal/user"
)

var (
	alice = identity.Actor{ID: "u-alice", Name: "Alice"}
	bob   = identity.Actor{ID: "u-bob", Name: "Bob"}
	carol = identity.Actor{ID: "u-carol", Name: "Carol"}
)

type fixture struct {
	apps          *Service
	groups        *group.Service
	notifications *notification.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	c := cache.NewMemory()

	jobs := job.NewService(job.NewRepository(db), c, time.Minute)
	for _, req := range []*job.CreateJobRequest{{ID: "job-1", Title: "Barista"}, {ID: "job-2", Title: "Baker"}} {
		if _, err := jobs.Create(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	notifications := notification.NewService(notification.NewRepository(db), c, 10*time.Second)
	users := user.NewService(user.NewRepository(db), c, time.Minute)
	groupRepo := group.NewRepository(db)

	return &fixture{
		apps:          NewService(db, NewRepository(db), groupRepo, jobs, notifications, c, 30*time.Second),
		groups:        group.NewService(db, groupRepo, jobs, notifications, users, c, 30*time.Second, "http://localhost:3000"),
		notifications: notifications,
	}
}

// readyGroup walks scenarios 1 to 3: Alice's group with Bob approved and
// participating.
func (f *fixture) readyGroup(t *testing.T) *group.Group {
	t.Helper()
	ctx := context.Background()
	bobID := bob.ID
	g, err := f.groups.CreateGroup(ctx, alice, &group.CreateGroupRequest{
		JobID:         "job-1",
		OwnerName:     "Alice",
		Members:       []group.MemberInput{{Name: "Bob", UserID: &bobID}},
		RequiredCount: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	memberID := g.Members[0].ID
	if err := f.groups.UpdateMemberStatus(ctx, alice.ID, g.ID, memberID, group.MemberStatusApproved); err != nil {
		t.Fatal(err)
	}
	if err := f.groups.UpdateMemberParticipationStatus(ctx, carol.ID, g.ID, memberID, group.ParticipationParticipating); !errors.Is(err, group.ErrNotAuthorized) {
		t.Fatalf("carol participation err = %v", err)
	}
	if err := f.groups.UpdateMemberParticipationStatus(ctx, bob.ID, g.ID, memberID, group.ParticipationParticipating); err != nil {
		t.Fatal(err)
	}
	g, err = f.groups.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestReadyGroupCanSubmit(t *testing.T) {
	f := newFixture(t)
	g := f.readyGroup(t)

	got := group.CheckReadiness(g)
	want := group.Readiness{CanSubmit: true, ApprovedCount: 1, ParticipatingCount: 1, RequiredCount: 1}
	if got != want {
		t.Errorf("readiness = %+v, want %+v", got, want)
	}
}

func TestCreateApplicationRaceCreatesDuplicates(t *testing.T) {
	f := newFixture(t)
	g := f.readyGroup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.apps.CreateApplication(ctx, alice, "job-1", []string{bob.ID}, &g.ID)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	// the unguarded path does not re-check at write time
	if apps := f.apps.GetApplications(ctx, alice.ID); len(apps) != 2 {
		t.Errorf("applications = %d, want 2", len(apps))
	}
}

func TestSubmitGroupApplicationOnce(t *testing.T) {
	f := newFixture(t)
	g := f.readyGroup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*Application, 4)
	created := make([]bool, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], created[i], errs[i] = f.apps.SubmitGroupApplication(ctx, alice, g.ID, nil)
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("submit %d: %v", i, errs[i])
		}
		if results[i].ID != results[0].ID {
			t.Errorf("submit %d returned %s, want %s", i, results[i].ID, results[0].ID)
		}
		if created[i] {
			fresh++
		}
	}
	if fresh != 1 {
		t.Errorf("created %d applications, want 1", fresh)
	}

	apps := f.apps.GetApplications(ctx, bob.ID)
	if len(apps) != 1 || apps[0].GroupID == nil || *apps[0].GroupID != g.ID {
		t.Fatalf("bob sees %+v", apps)
	}

	// bob participates, so he hears about the submission
	list := f.notifications.GetNotifications(ctx, bob.ID)
	invitations := 0
	for _, n := range list {
		if n.Type == notification.TypeApplicationInvitation {
			invitations++
		}
	}
	if invitations != 1 {
		t.Errorf("bob application invitations = %d, want 1", invitations)
	}
}

func TestSubmitGroupApplicationReleasesSlot(t *testing.T) {
	f := newFixture(t)
	g := f.readyGroup(t)
	ctx := context.Background()

	first, _, err := f.apps.SubmitGroupApplication(ctx, alice, g.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.apps.UpdateApplicationStatus(ctx, alice, first.ID, StatusRejected); err != nil {
		t.Fatal(err)
	}

	second, created, err := f.apps.SubmitGroupApplication(ctx, bob, g.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !created || second.ID == first.ID {
		t.Errorf("resubmission after rejection = %+v, created %v", second, created)
	}
}

func TestSubmitGroupApplicationIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	g := f.readyGroup(t)
	ctx := context.Background()
	key := "submit-1"

	first, created, err := f.apps.SubmitGroupApplication(ctx, alice, g.ID, &key)
	if err != nil || !created {
		t.Fatalf("first = %v, %v", created, err)
	}
	if err := f.apps.UpdateApplicationStatus(ctx, alice, first.ID, StatusCompleted); err != nil {
		t.Fatal(err)
	}

	// a retry under the same key returns the original even after the slot is released
	again, created, err := f.apps.SubmitGroupApplication(ctx, alice, g.ID, &key)
	if err != nil || created || again.ID != first.ID {
		t.Errorf("retry = %+v, %v, %v", again, created, err)
	}
}

func TestSubmitGroupApplicationIdempotencyKeyScope(t *testing.T) {
	f := newFixture(t)
	g := f.readyGroup(t)
	ctx := context.Background()
	key := "submit-1"

	first, _, err := f.apps.SubmitGroupApplication(ctx, alice, g.ID, &key)
	if err != nil {
		t.Fatal(err)
	}

	// bob owns a second ready group for the same job, with carol participating
	carolID := carol.ID
	other, err := f.groups.CreateGroup(ctx, bob, &group.CreateGroupRequest{
		JobID:         "job-1",
		Members:       []group.MemberInput{{Name: "Carol", UserID: &carolID}},
		RequiredCount: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	memberID := other.Members[0].ID
	if err := f.groups.UpdateMemberStatus(ctx, bob.ID, other.ID, memberID, group.MemberStatusApproved); err != nil {
		t.Fatal(err)
	}
	if err := f.groups.UpdateMemberParticipationStatus(ctx, carol.ID, other.ID, memberID, group.ParticipationParticipating); err != nil {
		t.Fatal(err)
	}

	dave := identity.Actor{ID: "u-dave", Name: "Dave"}
	tests := []struct {
		name    string
		actor   identity.Actor
		groupID string
		want    error
	}{
		{"stranger with a missing group", dave, "g-404", ErrGroupNotFound},
		{"stranger with the original group", dave, g.ID, ErrNotAuthorized},
		{"key reused for another group", bob, other.ID, ErrIdempotencyKeyReused},
		{"key reused by another member", bob, g.ID, ErrIdempotencyKeyReused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, err := f.apps.SubmitGroupApplication(ctx, tt.actor, tt.groupID, &key)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if app != nil {
				t.Errorf("returned %s, want nothing", app.ID)
			}
		})
	}

	if apps := f.apps.GetApplications(ctx, carol.ID); len(apps) != 0 {
		t.Errorf("second group has applications %+v", apps)
	}
	if apps := f.apps.GetApplications(ctx, dave.ID); len(apps) != 0 {
		t.Errorf("stranger sees %+v", apps)
	}

	// the owner of the key still gets the original back
	again, created, err := f.apps.SubmitGroupApplication(ctx, alice, g.ID, &key)
	if err != nil || created || again.ID != first.ID {
		t.Errorf("retry = %+v, %v, %v", again, created, err)
	}

	// a fresh key from bob lands its own group's first application
	fresh := "submit-2"
	second, created, err := f.apps.SubmitGroupApplication(ctx, bob, other.ID, &fresh)
	if err != nil || !created || second.ID == first.ID {
		t.Errorf("second group submit = %+v, %v, %v", second, created, err)
	}
}

func TestSubmitGroupApplicationGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bobID := bob.ID
	pending, err := f.groups.CreateGroup(ctx, alice, &group.CreateGroupRequest{
		JobID:         "job-1",
		Members:       []group.MemberInput{{Name: "Bob", UserID: &bobID}},
		RequiredCount: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		actor   identity.Actor
		groupID string
		want    error
	}{
		{"missing group", alice, "g-404", ErrGroupNotFound},
		{"stranger", carol, pending.ID, ErrNotAuthorized},
		{"not ready", alice, pending.ID, ErrNotReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.apps.SubmitGroupApplication(ctx, tt.actor, tt.groupID, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	f := newFixture(t)
	g := f.readyGroup(t)
	ctx := context.Background()

	if _, err := f.apps.CreateApplication(ctx, alice, "", nil, nil); !errors.Is(err, ErrJobRequired) {
		t.Errorf("empty job err = %v", err)
	}
	if _, err := f.apps.CreateApplication(ctx, alice, "job-404", nil, nil); !errors.Is(err, ErrJobRequired) {
		t.Errorf("missing job err = %v", err)
	}
	if _, err := f.apps.CreateApplication(ctx, alice, "job-2", nil, &g.ID); !errors.Is(err, ErrJobMismatch) {
		t.Errorf("mismatched job err = %v", err)
	}

	solo, err := f.apps.CreateApplication(ctx, carol, "job-2", []string{bob.ID, carol.ID, bob.ID}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if solo.GroupID != nil || solo.ApplicantID != carol.ID {
		t.Errorf("solo = %+v", solo)
	}
	if n := f.notifications.GetUnreadCount(ctx, carol.ID); n != 0 {
		t.Errorf("applicant notified %d times", n)
	}
}

func TestUpdateApplicationStatus(t *testing.T) {
	f := newFixture(t)
	g := f.readyGroup(t)
	ctx := context.Background()

	app, _, err := f.apps.SubmitGroupApplication(ctx, alice, g.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	before := f.notifications.GetUnreadCount(ctx, bob.ID)

	tests := []struct {
		name   string
		actor  identity.Actor
		status Status
		want   error
	}{
		{"not the applicant", bob, StatusApproved, ErrNotAuthorized},
		{"back to pending", alice, StatusPending, ErrInvalidStatus},
		{"approve", alice, StatusApproved, nil},
		{"approve again", alice, StatusApproved, nil},
		{"complete", alice, StatusCompleted, nil},
		{"completed is final", alice, StatusRejected, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.apps.UpdateApplicationStatus(ctx, tt.actor, app.ID, tt.status)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if err := f.apps.UpdateApplicationStatus(ctx, alice, "a-404", StatusApproved); !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("missing application err = %v", err)
	}

	// only the approval reached bob
	if got := f.notifications.GetUnreadCount(ctx, bob.ID); got != before+1 {
		t.Errorf("bob unread = %d, want %d", got, before+1)
	}
	apps := f.apps.GetApplications(ctx, bob.ID)
	if len(apps) != 1 || apps[0].Status != StatusCompleted {
		t.Errorf("bob sees %+v", apps)
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCompleted, true},
		{StatusApproved, StatusCompleted, true},
		{StatusApproved, StatusRejected, true},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusCompleted, StatusRejected, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestApplicationWriteTags(t *testing.T) {
	app := &Application{ID: "a-1", ApplicantID: alice.ID}
	got := applicationWriteTags(app, []string{bob.ID, alice.ID})
	want := []string{"applications", "application:a-1", "applications:u-alice", "applications:u-bob"}
	if len(got) != len(want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
