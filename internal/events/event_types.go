package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventJobCreated     EventType = "job_created"
	EventJobUpdated     EventType = "job_updated"
	EventJobDeleted     EventType = "job_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// JobPayload describes a job snapshot after the change.
type JobPayload struct {
	Title   string   `json:"title"`
	Company string   `json:"company"`
	Fields  []string `json:"fields,omitempty"`
}
