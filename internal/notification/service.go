package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fkhayef/groupapply/internal/cache"
	"github.com/fkhayef/groupapply/pkg/apperr"
)

// Common errors
var (
	ErrNotificationNotFound = apperr.NotFound("notification not found")
	ErrNotRecipient         = apperr.Unauthorized("not the recipient of this notification")
	ErrInvalidType          = apperr.Validation("unknown notification type")
	ErrNoRecipient          = apperr.Validation("notification recipient is required")
)

func recipientTag(userID string) string { return cache.ActorTag(cache.ClassNotifications, userID) }

// writeTags are the tags busted when userID's notifications change
func writeTags(userID, notificationID string) []string {
	return []string{cache.ClassNotifications, cache.InstanceTag("notification", notificationID), recipientTag(userID)}
}

// Service handles notification business logic
type Service struct {
	repo  *Repository
	cache cache.Cache
	ttl   time.Duration
}

// NewService creates a new notification service
func NewService(repo *Repository, c cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl}
}

// Create creates a new notification for userID
func (s *Service) Create(ctx context.Context, userID string, typ Type, p Payload) (*Notification, error) {
	if userID == "" {
		return nil, ErrNoRecipient
	}
	if !typ.Valid() {
		return nil, ErrInvalidType
	}

	n, err := s.repo.Create(ctx, userID, typ, p)
	if err != nil {
		return nil, err
	}
	cache.Bust(ctx, s.cache, writeTags(userID, n.ID)...)
	return n, nil
}

// GetNotifications retrieves a user's notifications. A store failure is
// logged and yields an empty list.
func (s *Service) GetNotifications(ctx context.Context, userID string) []*Notification {
	list, err := cache.Remember(ctx, s.cache, cache.Key("notifications", userID), s.ttl,
		[]string{cache.ClassNotifications, recipientTag(userID)},
		func() ([]*Notification, error) { return s.repo.ListByUserID(ctx, userID) })
	if err != nil {
		log.Printf("list notifications of %s: %v", userID, err)
		return []*Notification{}
	}
	return list
}

// GetUnreadCount returns the unread badge count. A store failure is logged
// and yields zero.
func (s *Service) GetUnreadCount(ctx context.Context, userID string) int {
	count, err := cache.Remember(ctx, s.cache, cache.Key("notifications", userID, "unread"), s.ttl,
		[]string{cache.ClassNotifications, recipientTag(userID)},
		func() (int, error) { return s.repo.GetUnreadCount(ctx, userID) })
	if err != nil {
		log.Printf("count unread notifications of %s: %v", userID, err)
		return 0
	}
	return count
}

// MarkAsRead marks a notification as read. Only the recipient may do this;
// marking an already read notification is a no-op.
func (s *Service) MarkAsRead(ctx context.Context, id, userID string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.UserID != userID {
		return ErrNotRecipient
	}
	if n.Read {
		return nil
	}

	changed, err := s.repo.MarkAsRead(ctx, id)
	if err != nil {
		return err
	}
	if changed {
		cache.Bust(ctx, s.cache, writeTags(userID, id)...)
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	cache.Bust(ctx, s.cache, cache.ClassNotifications, recipientTag(userID))
	return nil
}

// Fan-out helpers. They are fire-and-forget: a failed notification is logged
// and never fails the transition that triggered it.

// NotifyGroupInvitation tells each recipient they were invited to a group
func (s *Service) NotifyGroupInvitation(ctx context.Context, recipients []string, jobID, jobTitle, fromUserName string) int {
	msg := fmt.Sprintf("%s invited you to apply together", fromUserName)
	if jobTitle != "" {
		msg = fmt.Sprintf("%s invited you to apply together for %s", fromUserName, jobTitle)
	}
	return s.fanOut(ctx, recipients, TypeGroupInvitation, Payload{
		JobID:        jobID,
		JobTitle:     jobTitle,
		FromUserName: fromUserName,
		Message:      msg,
	})
}

// NotifyApplicationInvitation tells each recipient an application includes them
func (s *Service) NotifyApplicationInvitation(ctx context.Context, recipients []string, jobID, jobTitle, fromUserName string) int {
	msg := fmt.Sprintf("%s added you to an application", fromUserName)
	if jobTitle != "" {
		msg = fmt.Sprintf("%s added you to an application for %s", fromUserName, jobTitle)
	}
	return s.fanOut(ctx, recipients, TypeApplicationInvitation, Payload{
		JobID:        jobID,
		JobTitle:     jobTitle,
		FromUserName: fromUserName,
		Message:      msg,
	})
}

// NotifyApplicationStatus tells each recipient an application was approved or rejected
func (s *Service) NotifyApplicationStatus(ctx context.Context, recipients []string, approved bool, jobID, jobTitle, fromUserName string) int {
	typ, verb := TypeApplicationRejected, "rejected"
	if approved {
		typ, verb = TypeApplicationApproved, "approved"
	}
	msg := "Your application was " + verb
	if jobTitle != "" {
		msg = fmt.Sprintf("Your application for %s was %s", jobTitle, verb)
	}
	return s.fanOut(ctx, recipients, typ, Payload{
		JobID:        jobID,
		JobTitle:     jobTitle,
		FromUserName: fromUserName,
		Message:      msg,
	})
}

// fanOut creates one notification per recipient and returns how many were stored
func (s *Service) fanOut(ctx context.Context, recipients []string, typ Type, p Payload) int {
	sent := 0
	for _, userID := range recipients {
		if _, err := s.Create(ctx, userID, typ, p); err != nil {
			log.Printf("notify %s (%s): %v", userID, typ, err)
			continue
		}
		sent++
	}
	return sent
}
