package domain

import "time"

// Job is a posting owned by the user that created it.
type Job struct {
	ID          string
	Title       string
	Company     string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JobPatch carries the optional fields of a job update. Ownership is not
// patchable.
type JobPatch struct {
	Title       *string
	Company     *string
	Description *string
}

