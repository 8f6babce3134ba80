package application

// CreateApplicationRequest represents the request to submit an application.
// A request naming a group goes through the guarded group submission.
type CreateApplicationRequest struct {
	JobID         string   `json:"job_id" validate:"max=100"`
	GroupID       *string  `json:"group_id,omitempty" validate:"omitempty,min=1"`
	FriendUserIDs []string `json:"friend_user_ids,omitempty" validate:"omitempty,dive,required"`
}

// UpdateStatusRequest carries the applicant's transition
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=approved rejected completed"`
}

// ApplicationResponse represents the response for an application
type ApplicationResponse struct {
	ID          string  `json:"id"`
	JobID       string  `json:"job_id"`
	GroupID     *string `json:"group_id,omitempty"`
	ApplicantID string  `json:"applicant_id"`
	Status      Status  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ToResponse converts an Application model to an ApplicationResponse DTO
func (a *Application) ToResponse() *ApplicationResponse {
	return &ApplicationResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		GroupID:     a.GroupID,
		ApplicantID: a.ApplicantID,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   a.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
