package group

// MemberInput is one pre-selected member of a new group
type MemberInput struct {
	Name   string  `json:"name" validate:"required,min=1,max=100"`
	UserID *string `json:"user_id,omitempty" validate:"omitempty,min=1,max=100"`
}

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	JobID         string        `json:"job_id" validate:"required"`
	OwnerName     string        `json:"owner_name,omitempty" validate:"omitempty,max=100"`
	Members       []MemberInput `json:"members" validate:"dive"`
	RequiredCount int           `json:"required_count" validate:"min=1"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	Name   string  `json:"name" validate:"omitempty,max=100"`
	UserID *string `json:"user_id,omitempty" validate:"omitempty,min=1,max=100"`
}

// UpdateMemberStatusRequest carries the owner's decision on a member
type UpdateMemberStatusRequest struct {
	Status MemberStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// UpdateParticipationRequest carries a member's participation intent
type UpdateParticipationRequest struct {
	Status ParticipationStatus `json:"status" validate:"required,oneof=participating not_participating"`
}

// RespondRequest carries an invited member's answer. Accept must be sent
// explicitly; declining is final.
type RespondRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// AddMemberResult reports whether a member was added. A duplicate member is
// an unsuccessful result, not an error.
type AddMemberResult struct {
	Success  bool   `json:"success"`
	MemberID string `json:"member_id,omitempty"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID            string            `json:"id"`
	OwnerID       string            `json:"owner_id"`
	OwnerName     string            `json:"owner_name"`
	JobID         string            `json:"job_id"`
	RequiredCount int               `json:"required_count"`
	InviteLink    string            `json:"invite_link"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
	Members       []*MemberResponse `json:"members"`
	Access        *Access           `json:"access,omitempty"`
	Readiness     *Readiness        `json:"readiness,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	UserID              *string             `json:"user_id,omitempty"`
	Status              MemberStatus        `json:"status"`
	ParticipationStatus ParticipationStatus `json:"participation_status"`
	CreatedAt           string              `json:"created_at"`
	UpdatedAt           string              `json:"updated_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	resp := &GroupResponse{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		OwnerName:     g.OwnerName,
		JobID:         g.JobID,
		RequiredCount: g.RequiredCount,
		InviteLink:    g.InviteLink,
		CreatedAt:     g.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     g.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		Members:       make([]*MemberResponse, len(g.Members)),
	}
	for i, m := range g.Members {
		resp.Members[i] = m.ToResponse()
	}
	return resp
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:                  m.ID,
		Name:                m.Name,
		UserID:              m.userIDColumn(),
		Status:              m.Status,
		ParticipationStatus: m.ParticipationStatus,
		CreatedAt:           m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:           m.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
