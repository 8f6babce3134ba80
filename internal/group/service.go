package group

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
	"github.com/fkhayef/groupapply/internal/identity"
	"github.com/fkhayef/groupapply/internal/job"
	"github.com/fkhayef/groupapply/pkg/apperr"
)

// Common errors
var (
	ErrGroupNotFound        = apperr.NotFound("group not found")
	ErrMemberNotFound       = apperr.NotFound("member not found")
	ErrNotInvited           = apperr.NotFound("you are not invited to this group")
	ErrNotAuthorized        = apperr.Unauthorized("not authorized to perform this action")
	ErrInvalidRequiredCount = apperr.Validation("required count must be at least 1")
	ErrJobRequired          = apperr.Validation("job does not exist")
	ErrMemberNameRequired   = apperr.Validation("member name is required")
	ErrDuplicateMember      = apperr.Validation("a user can only be listed once")
	ErrOwnerIsNotMember     = apperr.Validation("the group owner cannot be a member")
	ErrInvalidStatus        = apperr.Validation("invalid member status")
	ErrInvalidParticipation = apperr.Validation("invalid participation status")
	ErrInvalidTransition    = apperr.Conflict("member has already answered the invitation")
	ErrNotApproved          = apperr.Conflict("member must be approved before choosing to participate")
)

// JobDirectory looks up the job a group applies to
type JobDirectory interface {
	GetByID(ctx context.Context, id string) (*job.Job, error)
}

// Notifier delivers group invitations
type Notifier interface {
	NotifyGroupInvitation(ctx context.Context, recipients []string, jobID, jobTitle, fromUserName string) int
}

// FriendLinker connects two users who met through an invite link
type FriendLinker interface {
	AddFriendship(ctx context.Context, a, b string) error
}

// Service is the group registry and the membership state machine
type Service struct {
	db            *sql.DB
	repo          *Repository
	jobs          JobDirectory
	notifier      Notifier
	friends       FriendLinker
	cache         cache.Cache
	ttl           time.Duration
	inviteBaseURL string
}

// NewService creates a new group service
func NewService(db *sql.DB, repo *Repository, jobs JobDirectory, notifier Notifier, friends FriendLinker, c cache.Cache, ttl time.Duration, inviteBaseURL string) *Service {
	return &Service{
		db:            db,
		repo:          repo,
		jobs:          jobs,
		notifier:      notifier,
		friends:       friends,
		cache:         c,
		ttl:           ttl,
		inviteBaseURL: strings.TrimRight(inviteBaseURL, "/"),
	}
}

// InviteLink is the stable self-join link of a group. It carries no
// signature or expiry: holding it is enough to join.
func (s *Service) InviteLink(groupID string) string {
	return s.inviteBaseURL + "/groups/" + groupID + "/join"
}

// CreateGroup creates a group owned by owner with its pre-selected members,
// all pending, and invites every linked member.
func (s *Service) CreateGroup(ctx context.Context, owner identity.Actor, req *CreateGroupRequest) (*Group, error) {
	if req.RequiredCount < 1 {
		return nil, ErrInvalidRequiredCount
	}
	jobID := strings.TrimSpace(req.JobID)
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

	ownerName := strings.TrimSpace(req.OwnerName)
	if ownerName == "" {
		ownerName = owner.Name
	}

	now := time.Now().UTC()
	g := &Group{
		ID:            uuid.NewString(),
		OwnerID:       owner.ID,
		OwnerName:     ownerName,
		JobID:         jobID,
		RequiredCount: req.RequiredCount,
		CreatedAt:     now,
		UpdatedAt:     now,
		Members:       make([]*Member, 0, len(req.Members)),
	}

	seen := make(map[string]bool)
	for i, in := range req.Members {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, ErrMemberNameRequired
		}
		link := LinkFor(in.UserID)
		if l, ok := link.(Linked); ok {
			if l.UserID == owner.ID {
				return nil, ErrOwnerIsNotMember
			}
			if seen[l.UserID] {
				return nil, ErrDuplicateMember
			}
			seen[l.UserID] = true
		}
		g.Members = append(g.Members, &Member{
			ID:                  uuid.NewString(),
			GroupID:             g.ID,
			Name:                name,
			Link:                link,
			Status:              MemberStatusPending,
			ParticipationStatus: ParticipationPending,
			// listings order members by created_at; keep the request order
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
			UpdatedAt: now,
		})
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.repo.WithTx(tx).Create(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	g.InviteLink = s.InviteLink(g.ID)

	cache.Bust(ctx, s.cache, groupWriteTags(g)...)

	// unlinked members cannot be notified; they join through the invite link
	if recipients := g.LinkedUserIDs(nil); len(recipients) > 0 {
		s.notifier.NotifyGroupInvitation(ctx, recipients, g.JobID, posting.Title, g.OwnerName)
	}

	return g, nil
}

// GetGroup retrieves a group with its members. A store failure is logged
// and reported as ErrGroupNotFound.
func (s *Service) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	g, err := cache.Remember(ctx, s.cache, cache.Key("group", groupID), s.ttl,
		[]string{cache.ClassGroups, groupTag(groupID)},
		func() (*Group, error) { return s.repo.GetByID(ctx, groupID) })
	if err != nil {
		log.Printf("get group %s: %v", groupID, err)
		return nil, ErrGroupNotFound
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	g.InviteLink = s.InviteLink(g.ID)
	return g, nil
}

// GetGroups retrieves the groups callerID owns or is a member of,
// optionally for one job. A store failure is logged and yields an empty list.
func (s *Service) GetGroups(ctx context.Context, callerID string, jobID *string) []*Group {
	scope := "*"
	if jobID != nil {
		scope = *jobID
	}
	groups, err := cache.Remember(ctx, s.cache, cache.Key("groups", callerID, scope), s.ttl,
		[]string{cache.ClassGroups, actorGroupsTag(callerID)},
		func() ([]*Group, error) { return s.repo.ListForUser(ctx, callerID, jobID) })
	if err != nil {
		log.Printf("list groups of %s: %v", callerID, err)
		return []*Group{}
	}
	for _, g := range groups {
		g.InviteLink = s.InviteLink(g.ID)
	}
	return groups
}

// AddMemberToGroup adds a member to a group.
//
// The owner invites: the member starts pending and a linked invitee is
// notified. Anyone else may only add themselves, which is the invite-link
// self-join: reaching the link counts as consent, so the member starts
// approved and becomes friends with the owner. Adding a user who is already
// a member is an unsuccessful result, not an error.
func (s *Service) AddMemberToGroup(ctx context.Context, actor identity.Actor, groupID, name string, userID *string) (AddMemberResult, error) {
	g, err := s.load(ctx, groupID)
	if err != nil {
		return AddMemberResult{}, err
	}
	access := AccessFor(actor.ID, g)

	link := LinkFor(userID)
	linkedID, linked := "", false
	if l, ok := link.(Linked); ok {
		linkedID, linked = l.UserID, true
	}

	status := MemberStatusPending
	if !access.IsOwner {
		if !linked || linkedID != actor.ID {
			return AddMemberResult{}, ErrNotAuthorized
		}
		status = MemberStatusApproved
	}
	if linked && linkedID == g.OwnerID {
		return AddMemberResult{}, ErrOwnerIsNotMember
	}

	name = strings.TrimSpace(name)
	if name == "" && status == MemberStatusApproved {
		name = actor.Name
	}
	if name == "" {
		return AddMemberResult{}, ErrMemberNameRequired
	}

	if linked && g.MemberByUser(linkedID) != nil {
		return AddMemberResult{Success: false}, nil
	}

	now := time.Now().UTC()
	m := &Member{
		ID:                  uuid.NewString(),
		GroupID:             g.ID,
		Name:                name,
		Link:                link,
		Status:              status,
		ParticipationStatus: ParticipationPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.AddMember(ctx, m); err != nil {
		// lost a race with an identical insert
		if database.IsUniqueViolation(err) {
			return AddMemberResult{Success: false}, nil
		}
		return AddMemberResult{}, err
	}
	if err := s.repo.Touch(ctx, g.ID); err != nil {
		log.Printf("touch group %s: %v", g.ID, err)
	}
	g.Members = append(g.Members, m)

	cache.Bust(ctx, s.cache, groupWriteTags(g)...)

	switch {
	case !linked:
	case status == MemberStatusApproved:
		if err := s.friends.AddFriendship(ctx, g.OwnerID, linkedID); err != nil {
			log.Printf("befriend %s and %s: %v", g.OwnerID, linkedID, err)
		}
	default:
		s.notifier.NotifyGroupInvitation(ctx, []string{linkedID}, g.JobID, s.jobTitle(ctx, g.JobID), g.OwnerName)
	}

	return AddMemberResult{Success: true, MemberID: m.ID}, nil
}

// JoinViaInviteLink adds the caller to the group as an approved member
func (s *Service) JoinViaInviteLink(ctx context.Context, actor identity.Actor, groupID string) (AddMemberResult, error) {
	return s.AddMemberToGroup(ctx, actor, groupID, actor.Name, &actor.ID)
}

// UpdateMemberStatus records the owner's decision on a pending member.
// Only the group owner may decide; an answered member cannot be changed.
func (s *Service) UpdateMemberStatus(ctx context.Context, actorID, groupID, memberID string, status MemberStatus) error {
	if status != MemberStatusApproved && status != MemberStatusRejected {
		return ErrInvalidStatus
	}
	g, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !AccessFor(actorID, g).IsOwner {
		return ErrNotAuthorized
	}
	return s.answer(ctx, g, memberID, status)
}

// RespondToInvitation lets an invited member accept or decline their own invitation
func (s *Service) RespondToInvitation(ctx context.Context, actorID, groupID string, accept bool) error {
	g, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	access := AccessFor(actorID, g)
	if !access.IsMember {
		return ErrNotInvited
	}

	status := MemberStatusRejected
	if accept {
		status = MemberStatusApproved
	}
	return s.answer(ctx, g, access.MemberID, status)
}

// UpdateMemberParticipationStatus records whether an approved member will
// take part in the application. Only the member themself may decide.
func (s *Service) UpdateMemberParticipationStatus(ctx context.Context, actorID, groupID, memberID string, status ParticipationStatus) error {
	if status != ParticipationParticipating && status != ParticipationNotParticipating {
		return ErrInvalidParticipation
	}
	g, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	m := g.Member(memberID)
	if m == nil {
		return ErrMemberNotFound
	}
	if AccessFor(actorID, g).MemberID != memberID {
		return ErrNotAuthorized
	}
	if m.Status != MemberStatusApproved {
		return ErrNotApproved
	}
	if m.ParticipationStatus == status {
		return nil
	}

	changed, err := s.repo.UpdateParticipation(ctx, g.ID, memberID, status)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotApproved
	}
	cache.Bust(ctx, s.cache, groupWriteTags(g)...)
	return nil
}

// answer moves a pending member to status. Repeating the current answer is
// a no-op; there is no way back from an answer.
func (s *Service) answer(ctx context.Context, g *Group, memberID string, status MemberStatus) error {
	m := g.Member(memberID)
	if m == nil {
		return ErrMemberNotFound
	}
	if m.Status == status {
		return nil
	}
	if m.Status != MemberStatusPending {
		return ErrInvalidTransition
	}

	changed, err := s.repo.UpdateMemberStatus(ctx, g.ID, memberID, status)
	if err != nil {
		return err
	}
	if !changed {
		return ErrInvalidTransition
	}
	cache.Bust(ctx, s.cache, groupWriteTags(g)...)
	return nil
}

// load reads a group straight from the store. Decisions are never taken
// on cached state.
func (s *Service) load(ctx context.Context, groupID string) (*Group, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

func (s *Service) jobTitle(ctx context.Context, jobID string) string {
	posting, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return ""
	}
	return posting.Title
}
