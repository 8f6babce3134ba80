package group

import (
	"encoding/json"
	"time"
)

// MemberStatus is a member's answer to the group invitation
type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusApproved MemberStatus = "approved"
	MemberStatusRejected MemberStatus = "rejected"
)

// ParticipationStatus is an approved member's intent to take part in the application
type ParticipationStatus string

const (
	ParticipationPending          ParticipationStatus = "pending"
	ParticipationParticipating    ParticipationStatus = "participating"
	ParticipationNotParticipating ParticipationStatus = "not_participating"
)

// Link records whether a member is tied to an account. It is either Linked
// or Unlinked; an Unlinked member cannot be notified or attributed and is
// reached through the invite link instead.
type Link interface {
	isLink()
}

// Linked is a member backed by an identity-gateway account
type Linked struct {
	UserID string
}

// Unlinked is a member known only by name
type Unlinked struct{}

func (Linked) isLink()   {}
func (Unlinked) isLink() {}

// LinkFor builds the Link for an optional user id
func LinkFor(userID *string) Link {
	if userID == nil || *userID == "" {
		return Unlinked{}
	}
	return Linked{UserID: *userID}
}

// Group is a set of users coordinating one application to a job posting
type Group struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	OwnerName     string    `json:"owner_name"`
	JobID         string    `json:"job_id"`
	RequiredCount int       `json:"required_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Members       []*Member `json:"members"`
	InviteLink    string    `json:"invite_link,omitempty"`
}

// Member returns the member with id, or nil
func (g *Group) Member(id string) *Member {
	for _, m := range g.Members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// MemberByUser returns the member linked to userID, or nil
func (g *Group) MemberByUser(userID string) *Member {
	for _, m := range g.Members {
		if id, ok := m.UserID(); ok && id == userID {
			return m
		}
	}
	return nil
}

// LinkedUserIDs returns the account ids of the members accepted by keep
func (g *Group) LinkedUserIDs(keep func(*Member) bool) []string {
	var ids []string
	for _, m := range g.Members {
		id, ok := m.UserID()
		if ok && (keep == nil || keep(m)) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Member is a user invited into a group
type Member struct {
	ID                  string
	GroupID             string
	Name                string
	Link                Link
	Status              MemberStatus
	ParticipationStatus ParticipationStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UserID returns the linked account id and whether the member is linked
func (m *Member) UserID() (string, bool) {
	switch l := m.Link.(type) {
	case Linked:
		return l.UserID, true
	default:
		return "", false
	}
}

// userIDColumn is the nullable user_id value for m
func (m *Member) userIDColumn() *string {
	if id, ok := m.UserID(); ok {
		return &id
	}
	return nil
}

type memberJSON struct {
	ID                  string              `json:"id"`
	GroupID             string              `json:"group_id"`
	Name                string              `json:"name"`
	UserID              *string             `json:"user_id,omitempty"`
	Status              MemberStatus        `json:"status"`
	ParticipationStatus ParticipationStatus `json:"participation_status"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// MarshalJSON flattens the Link into a nullable user_id
func (m Member) MarshalJSON() ([]byte, error) {
	return json.Marshal(memberJSON{
		ID:                  m.ID,
		GroupID:             m.GroupID,
		Name:                m.Name,
		UserID:              m.userIDColumn(),
		Status:              m.Status,
		ParticipationStatus: m.ParticipationStatus,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	})
}

// UnmarshalJSON restores the Link from a nullable user_id
func (m *Member) UnmarshalJSON(data []byte) error {
	var v memberJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Member{
		ID:                  v.ID,
		GroupID:             v.GroupID,
		Name:                v.Name,
		Link:                LinkFor(v.UserID),
		Status:              v.Status,
		ParticipationStatus: v.ParticipationStatus,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
	return nil
}
