package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/jobboard/internal/domain"
	"github.com/spec-kit/jobboard/internal/repository"
)

// JobStore is an in-process JobRepository that keeps insertion order.
type JobStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Job
	now   func() time.Time
}

var _ repository.JobRepository = (*JobStore)(nil)

// NewJobStore returns an empty store.
func NewJobStore() *JobStore {
	return &JobStore{
		byID: make(map[string]domain.Job),
		now:  time.Now,
	}
}

func (s *JobStore) Create(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	job.ID = uuid.NewString()
	job.CreatedAt = now
	job.UpdatedAt = now
	s.byID[job.ID] = *job
	s.order = append(s.order, job.ID)
	return nil
}

func (s *JobStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Job{}
	for _, id := range s.order {
		if job := s.byID[id]; job.CreatedBy == ownerID {
			result = append(result, job)
		}
	}
	return result, nil
}

func (s *JobStore) UpdateOwned(_ context.Context, id, ownerID string, patch domain.JobPatch) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.byID[id]
	if !ok || job.CreatedBy != ownerID {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		job.Title = *patch.Title
	}
	if patch.Company != nil {
		job.Company = *patch.Company
	}
	if patch.Description != nil {
		job.Description = *patch.Description
	}
	job.UpdatedAt = s.now().UTC()
	s.byID[id] = job
	return &job, nil
}

func (s *JobStore) DeleteOwned(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.byID[id]
	if !ok || job.CreatedBy != ownerID {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
