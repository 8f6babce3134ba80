package user

import (
	"context"
	"log"
	"time"

	"github.com/fkhayef/groupapply/internal/cache"
	"github.com/fkhayef/groupapply/internal/identity"
	"github.com/fkhayef/groupapply/pkg/apperr"
)

// Common errors
var (
	ErrUserNotFound = apperr.NotFound("user not found")
	ErrSelfFriend   = apperr.Validation("cannot befriend yourself")
)

func userTag(id string) string    { return cache.InstanceTag("user", id) }
func friendsTag(id string) string { return cache.ActorTag(cache.ClassFriends, id) }

// Service handles identity lookups and friend edges
type Service struct {
	repo  *Repository
	cache cache.Cache
	ttl   time.Duration
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository, c cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl}
}

// Sync stores the caller's profile as reported by the identity gateway,
// letting req override the display name and email.
func (s *Service) Sync(ctx context.Context, actor identity.Actor, req *SyncProfileRequest) (*User, error) {
	name := actor.Name
	var email *string
	if req != nil {
		if req.Name != "" {
			name = req.Name
		}
		email = req.Email
	}

	user, err := s.repo.Upsert(ctx, actor.ID, name, email)
	if err != nil {
		return nil, err
	}
	cache.Bust(ctx, s.cache, cache.ClassUsers, userTag(actor.ID))
	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := cache.Remember(ctx, s.cache, cache.Key("user", id), s.ttl,
		[]string{cache.ClassUsers, userTag(id)},
		func() (*User, error) { return s.repo.GetByID(ctx, id) })
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// AddFriendship connects two users with one edge per direction
func (s *Service) AddFriendship(ctx context.Context, a, b string) error {
	if a == b {
		return ErrSelfFriend
	}
	if err := s.repo.AddFriendEdge(ctx, a, b); err != nil {
		return err
	}
	if err := s.repo.AddFriendEdge(ctx, b, a); err != nil {
		return err
	}
	cache.Bust(ctx, s.cache, cache.ClassFriends, friendsTag(a), friendsTag(b))
	return nil
}

// ListFriends retrieves a user's friends. A store failure is logged and
// yields an empty list.
func (s *Service) ListFriends(ctx context.Context, userID string) []*Friend {
	friends, err := cache.Remember(ctx, s.cache, cache.Key("friends", userID), s.ttl,
		[]string{cache.ClassFriends, friendsTag(userID)},
		func() ([]*Friend, error) { return s.repo.ListFriends(ctx, userID) })
	if err != nil {
		log.Printf("list friends of %s: %v", userID, err)
		return []*Friend{}
	}
	return friends
}
