package notification

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
	return NewService(NewRepository(dbtest.New(t)), cache.NewMemory(), 10*time.Second)
}

func TestCreateValidates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, "", TypeGroupInvitation, Payload{Message: "hi"}); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("empty recipient err = %v", err)
	}
	if _, err := s.Create(ctx, "u-bob", Type("party"), Payload{Message: "hi"}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("bad type err = %v", err)
	}
}

func TestUnreadCountStaysCoherent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// prime the cache with zero, then write through the service
	if got := s.GetUnreadCount(ctx, "u-bob"); got != 0 {
		t.Fatalf("initial unread = %d", got)
	}
	first, err := s.Create(ctx, "u-bob", TypeGroupInvitation, Payload{JobID: "job-1", JobTitle: "Barista", FromUserName: "Alice", Message: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, "u-bob", TypeApplicationInvitation, Payload{Message: "apply"}); err != nil {
		t.Fatal(err)
	}
	if got := s.GetUnreadCount(ctx, "u-bob"); got != 2 {
		t.Fatalf("unread after create = %d, want 2", got)
	}

	list := s.GetNotifications(ctx, "u-bob")
	if len(list) != 2 {
		t.Fatalf("list = %d items", len(list))
	}

	if err := s.MarkAsRead(ctx, first.ID, "u-bob"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetUnreadCount(ctx, "u-bob"); got != 1 {
		t.Errorf("unread after mark = %d, want 1", got)
	}

	if err := s.MarkAllAsRead(ctx, "u-bob"); err != nil {
		t.Fatal(err)
	}
	if got := s.GetUnreadCount(ctx, "u-bob"); got != 0 {
		t.Errorf("unread after mark all = %d, want 0", got)
	}
}

func TestMarkAsRead(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	n, err := s.Create(ctx, "u-bob", TypeGroupInvitation, Payload{Message: "hi"})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.MarkAsRead(ctx, n.ID, "u-carol"); !errors.Is(err, ErrNotRecipient) {
		t.Errorf("stranger err = %v", err)
	}
	if err := s.MarkAsRead(ctx, "missing", "u-bob"); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("missing err = %v", err)
	}
	// idempotent
	for i := 0; i < 2; i++ {
		if err := s.MarkAsRead(ctx, n.ID, "u-bob"); err != nil {
			t.Fatalf("MarkAsRead #%d: %v", i, err)
		}
	}

	stored, err := s.repo.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Read || stored.Message != "hi" || stored.Type != TypeGroupInvitation {
		t.Errorf("stored = %+v", stored)
	}
}

func TestFanOut(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	sent := s.NotifyGroupInvitation(ctx, []string{"u-bob", "", "u-carol"}, "job-1", "Barista", "Alice")
	if sent != 2 {
		t.Errorf("sent = %d, want 2 (empty recipient skipped)", sent)
	}

	list := s.GetNotifications(ctx, "u-carol")
	if len(list) != 1 {
		t.Fatalf("carol has %d notifications", len(list))
	}
	n := list[0]
	if n.Type != TypeGroupInvitation || n.JobTitle == nil || *n.JobTitle != "Barista" || n.FromUserName == nil || *n.FromUserName != "Alice" {
		t.Errorf("notification = %+v", n)
	}
	if n.Message != "Alice invited you to apply together for Barista" {
		t.Errorf("message = %q", n.Message)
	}

	if got := s.NotifyApplicationStatus(ctx, []string{"u-bob"}, false, "job-1", "", "Alice"); got != 1 {
		t.Errorf("status fan-out sent %d", got)
	}
	bobs := s.GetNotifications(ctx, "u-bob")
	if len(bobs) != 2 {
		t.Fatalf("bob has %d notifications", len(bobs))
	}
	var rejected int
	for _, n := range bobs {
		if n.Type == TypeApplicationRejected {
			rejected++
			if n.Message != "Your application was rejected" {
				t.Errorf("message = %q", n.Message)
			}
		}
	}
	if rejected != 1 {
		t.Errorf("rejected notifications = %d", rejected)
	}
}

func TestWriteTags(t *testing.T) {
	got := writeTags("u-bob", "n-1")
	want := []string{"notifications", "notification:n-1", "notifications:u-bob"}
	if len(got) != len(want) {
		t.Fatalf("tags = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
