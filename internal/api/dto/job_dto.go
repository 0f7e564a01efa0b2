package dto

import (
	"time"

	"github.com/spec-kit/jobboard/internal/domain"
)

// CreateJobRequest payload for POST /api/jobs.
type CreateJobRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// UpdateJobRequest payload for PATCH /api/jobs/:id. Absent fields are left
// unchanged; any createdBy in the body is ignored.
type UpdateJobRequest struct {
	Title       *string `json:"title"`
	Company     *string `json:"company"`
	Description *string `json:"description"`
}

// Patch converts the request into a domain patch.
func (r UpdateJobRequest) Patch() domain.JobPatch {
	return domain.JobPatch{
		Title:       r.Title,
		Company:     r.Company,
		Description: r.Description,
	}
}

// JobResponse is the wire representation of a job.
type JobResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewJobResponse maps a domain job to its response shape.
func NewJobResponse(job domain.Job) JobResponse {
	return JobResponse{
		ID:          job.ID,
		Title:       job.Title,
		Company:     job.Company,
		Description: job.Description,
		CreatedBy:   job.CreatedBy,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

// NewJobListResponse maps a listing, always producing a JSON array.
func NewJobListResponse(jobs []domain.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, NewJobResponse(job))
	}
	return out
}
