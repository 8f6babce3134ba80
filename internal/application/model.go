package application

import "time"

// Status is the lifecycle state of an application
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCompleted},
	StatusApproved: {StatusCompleted, StatusRejected},
}

// Live reports whether the application still occupies its group's slot
func (s Status) Live() bool {
	return s == StatusPending || s == StatusApproved
}

// CanTransitionTo reports whether s may move to next. Rejected and
// completed are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application is one submission to a job, solo or on behalf of a group
type Application struct {
	ID             string    `json:"id"`
	JobID          string    `json:"job_id"`
	GroupID        *string   `json:"group_id,omitempty"`
	ApplicantID    string    `json:"applicant_id"`
	Status         Status    `json:"status"`
	IdempotencyKey *string   `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
