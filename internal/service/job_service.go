package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/jobboard/internal/domain"
	"github.com/spec-kit/jobboard/internal/events"
	"github.com/spec-kit/jobboard/internal/repository"
	apperrors "github.com/spec-kit/jobboard/pkg/util"
)

// JobListCache caches the per-owner job listing. Entries are keyed by a
// per-owner version that Invalidate advances; Set stores under the version
// observed before the listing was read.
type JobListCache interface {
	Version(ctx context.Context, ownerID string) (int64, error)
	Get(ctx context.Context, ownerID string, version int64) ([]domain.Job, bool, error)
	Set(ctx context.Context, ownerID string, version int64, jobs []domain.Job) error
	Invalidate(ctx context.Context, ownerID string) error
}

// JobService exposes job CRUD scoped to the calling owner.
type JobService struct {
	jobs       repository.JobRepository
	cache      JobListCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// JobDependencies bundles collaborators for the job service. Cache and
// Dispatcher are optional.
type JobDependencies struct {
	JobRepo    repository.JobRepository
	Cache      JobListCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// JobInput describes job creation payload.
type JobInput struct {
	Title       string
	Company     string
	Description string
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		jobs:       deps.JobRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create persists a job owned by ownerID.
func (s *JobService) Create(ctx context.Context, ownerID string, input JobInput) (*domain.Job, error) {
	if ownerID == "" {
		return nil, apperrors.NewUnauthenticated("caller identity required")
	}

	var missing []string
	if isBlank(input.Title) {
		missing = append(missing, "title")
	}
	if isBlank(input.Company) {
		missing = append(missing, "company")
	}
	if isBlank(input.Description) {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("all fields are required", map[string]any{"missing": missing})
	}

	job := &domain.Job{
		Title:       input.Title,
		Company:     input.Company,
		Description: input.Description,
		CreatedBy:   ownerID,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("create job: %w", err))
	}

	s.invalidate(ctx, ownerID)
	publish(ctx, s.dispatcher, s.logger, events.EventJobCreated, ownerID, job.ID,
		events.JobPayload{Title: job.Title, Company: job.Company})
	return job, nil
}

// ListMine returns every job owned by ownerID in creation order.
func (s *JobService) ListMine(ctx context.Context, ownerID string) ([]domain.Job, error) {
	if ownerID == "" {
		return nil, apperrors.NewUnauthenticated("caller identity required")
	}

	cached := s.cache != nil
	var version int64
	if cached {
		v, err := s.cache.Version(ctx, ownerID)
		if err != nil {
			s.logger.Warn("job cache version read failed", zap.String("owner_id", ownerID), zap.Error(err))
			cached = false
		}
		version = v
	}
	if cached {
		jobs, ok, err := s.cache.Get(ctx, ownerID, version)
		if err != nil {
			s.logger.Warn("job cache read failed", zap.String("owner_id", ownerID), zap.Error(err))
		} else if ok {
			return jobs, nil
		}
	}

	jobs, err := s.jobs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("list jobs: %w", err))
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}

	if cached {
		if err := s.cache.Set(ctx, ownerID, version, jobs); err != nil {
			s.logger.Warn("job cache write failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}
	return jobs, nil
}

// Update patches a job owned by ownerID. A job that does not exist and a job
// owned by someone else produce the same error.
func (s *JobService) Update(ctx context.Context, jobID, ownerID string, patch domain.JobPatch) (*domain.Job, error) {
	if ownerID == "" {
		return nil, apperrors.NewUnauthenticated("caller identity required")
	}
	id, err := parseJobID(jobID)
	if err != nil {
		return nil, err
	}

	var blank []string
	if patch.Title != nil && isBlank(*patch.Title) {
		blank = append(blank, "title")
	}
	if patch.Company != nil && isBlank(*patch.Company) {
		blank = append(blank, "company")
	}
	if patch.Description != nil && isBlank(*patch.Description) {
		blank = append(blank, "description")
	}
	if len(blank) > 0 {
		return nil, apperrors.NewValidationError("fields must not be empty", map[string]any{"empty": blank})
	}

	job, err := s.jobs.UpdateOwned(ctx, id, ownerID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundOrForbidden("job")
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("update job: %w", err))
	}

	s.invalidate(ctx, ownerID)
	publish(ctx, s.dispatcher, s.logger, events.EventJobUpdated, ownerID, job.ID,
		events.JobPayload{Title: job.Title, Company: job.Company, Fields: patchedFields(patch)})
	return job, nil
}

// Delete removes a job owned by ownerID.
func (s *JobService) Delete(ctx context.Context, jobID, ownerID string) error {
	if ownerID == "" {
		return apperrors.NewUnauthenticated("caller identity required")
	}
	id, err := parseJobID(jobID)
	if err != nil {
		return err
	}

	if err := s.jobs.DeleteOwned(ctx, id, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFoundOrForbidden("job")
		}
		return apperrors.NewInternalError(fmt.Errorf("delete job: %w", err))
	}

	s.invalidate(ctx, ownerID)
	publish(ctx, s.dispatcher, s.logger, events.EventJobDeleted, ownerID, id, nil)
	return nil
}

func (s *JobService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn("job cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

// parseJobID validates the identifier and returns its canonical form.
func parseJobID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewInvalidIdentifier("job")
	}
	return id.String(), nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func patchedFields(patch domain.JobPatch) []string {
	var fields []string
	if patch.Title != nil {
		fields = append(fields, "title")
	}
	if patch.Company != nil {
		fields = append(fields, "company")
	}
	if patch.Description != nil {
		fields = append(fields, "description")
	}
	return fields
}
