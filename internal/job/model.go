package job

import "time"

// Job is the local read model of a job posting owned by the job board
type Job struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Company   *string   `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateJobRequest represents the request to register a job posting
type CreateJobRequest struct {
	ID      string  `json:"id" validate:"required,max=100"`
	Title   string  `json:"title" validate:"required,min=1,max=200"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
}
