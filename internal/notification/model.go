package notification

import "time"

// Type is the kind of event a notification reports
type Type string

const (
	TypeGroupInvitation       Type = "group_invitation"
	TypeApplicationInvitation Type = "application_invitation"
	TypeApplicationApproved   Type = "application_approved"
	TypeApplicationRejected   Type = "application_rejected"
)

// Valid reports whether t is a known notification type
func (t Type) Valid() bool {
	switch t {
	case TypeGroupInvitation, TypeApplicationInvitation, TypeApplicationApproved, TypeApplicationRejected:
		return true
	}
	return false
}

// Notification is a pull-polled message for one user. Only Read ever changes.
type Notification struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Type         Type      `json:"type"`
	JobID        *string   `json:"job_id,omitempty"`
	JobTitle     *string   `json:"job_title,omitempty"`
	FromUserName *string   `json:"from_user_name,omitempty"`
	Message      string    `json:"message"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// Payload carries the event details of a new notification
type Payload struct {
	JobID        string
	JobTitle     string
	FromUserName string
	Message      string
}
