package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/jobboard/internal/cache"
	"github.com/spec-kit/jobboard/internal/domain"
	"github.com/spec-kit/jobboard/internal/events"
	"github.com/spec-kit/jobboard/internal/repository"
	"github.com/spec-kit/jobboard/internal/repository/memory"
	"github.com/spec-kit/jobboard/internal/service"
	apperrors "github.com/spec-kit/jobboard/pkg/util"
)

const (
	ownerA = "7f1c1a52-0e43-4d6c-9a55-7f0a3f3a0001"
	ownerB = "7f1c1a52-0e43-4d6c-9a55-7f0a3f3a0002"
)

func strPtr(s string) *string { return &s }

// countingJobRepo records how many calls reach the store.
type countingJobRepo struct {
	repository.JobRepository
	calls int
}

func (r *countingJobRepo) Create(ctx context.Context, job *domain.Job) error {
	r.calls++
	return r.JobRepository.Create(ctx, job)
}

func (r *countingJobRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Job, error) {
	r.calls++
	return r.JobRepository.ListByOwner(ctx, ownerID)
}

func (r *countingJobRepo) UpdateOwned(ctx context.Context, id, ownerID string, patch domain.JobPatch) (*domain.Job, error) {
	r.calls++
	return r.JobRepository.UpdateOwned(ctx, id, ownerID, patch)
}

func (r *countingJobRepo) DeleteOwned(ctx context.Context, id, ownerID string) error {
	r.calls++
	return r.JobRepository.DeleteOwned(ctx, id, ownerID)
}

type cacheKey struct {
	owner   string
	version int64
}

type mapCache struct {
	versions    map[string]int64
	entries     map[cacheKey][]domain.Job
	invalidated []string
	failReads   bool
}

func newMapCache() *mapCache {
	return &mapCache{versions: make(map[string]int64), entries: make(map[cacheKey][]domain.Job)}
}

func (c *mapCache) Version(_ context.Context, ownerID string) (int64, error) {
	if c.failReads {
		return 0, errors.New("cache down")
	}
	return c.versions[ownerID], nil
}

func (c *mapCache) Get(_ context.Context, ownerID string, version int64) ([]domain.Job, bool, error) {
	jobs, ok := c.entries[cacheKey{ownerID, version}]
	return jobs, ok, nil
}

func (c *mapCache) Set(_ context.Context, ownerID string, version int64, jobs []domain.Job) error {
	c.entries[cacheKey{ownerID, version}] = jobs
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ownerID string) error {
	c.versions[ownerID]++
	c.invalidated = append(c.invalidated, ownerID)
	return nil
}

func (c *mapCache) current(ownerID string) ([]domain.Job, bool) {
	jobs, ok := c.entries[cacheKey{ownerID, c.versions[ownerID]}]
	return jobs, ok
}

// pausingJobRepo blocks the next ListByOwner after it has read the store
// until release is closed.
type pausingJobRepo struct {
	repository.JobRepository

	mu      sync.Mutex
	reached chan struct{}
	release chan struct{}
}

func (r *pausingJobRepo) pauseNextList() (reached, release chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reached = make(chan struct{})
	r.release = make(chan struct{})
	return r.reached, r.release
}

func (r *pausingJobRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Job, error) {
	jobs, err := r.JobRepository.ListByOwner(ctx, ownerID)

	r.mu.Lock()
	reached, release := r.reached, r.release
	r.reached, r.release = nil, nil
	r.mu.Unlock()

	if reached != nil {
		close(reached)
		<-release
	}
	return jobs, err
}

func newJobService(repo repository.JobRepository, listCache service.JobListCache, dispatcher events.Dispatcher) *service.JobService {
	deps := service.JobDependencies{JobRepo: repo, Dispatcher: dispatcher, Logger: zap.NewNop()}
	if listCache != nil {
		deps.Cache = listCache
	}
	return service.NewJobService(deps)
}

func validInput() service.JobInput {
	return service.JobInput{Title: "Eng", Company: "Acme", Description: "Build stuff"}
}

func TestJobCreate_SetsOwner(t *testing.T) {
	svc := newJobService(memory.NewJobStore(), nil, nil)

	job, err := svc.Create(context.Background(), ownerA, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	require.Equal(t, ownerA, job.CreatedBy)
	require.Equal(t, "Eng", job.Title)
	require.False(t, job.CreatedAt.IsZero())
}

func TestJobCreate_Validation(t *testing.T) {
	repo := &countingJobRepo{JobRepository: memory.NewJobStore()}
	svc := newJobService(repo, nil, nil)

	for _, input := range []service.JobInput{
		{Company: "Acme", Description: "d"},
		{Title: "t", Description: "d"},
		{Title: "t", Company: "Acme"},
		{Title: "  ", Company: "Acme", Description: "d"},
	} {
		_, err := svc.Create(context.Background(), ownerA, input)
		require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed), "%+v", input)
	}
	require.Zero(t, repo.calls)
}

func TestJobListMine_OnlyOwnJobs(t *testing.T) {
	ctx := context.Background()
	svc := newJobService(memory.NewJobStore(), nil, nil)

	a1, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)
	a2, err := svc.Create(ctx, ownerA, service.JobInput{Title: "Ops", Company: "Acme", Description: "Run"})
	require.NoError(t, err)

	listA, err := svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	require.Equal(t, []domain.Job{*a1, *a2}, listA)

	listB, err := svc.ListMine(ctx, ownerB)
	require.NoError(t, err)
	require.NotNil(t, listB)
	require.Empty(t, listB)
}

func TestJobUpdate_ForeignAndMissingAreIdentical(t *testing.T) {
	ctx := context.Background()
	svc := newJobService(memory.NewJobStore(), nil, nil)
	job, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)

	patch := domain.JobPatch{Title: strPtr("Hijacked")}
	_, foreign := svc.Update(ctx, job.ID, ownerB, patch)
	_, missing := svc.Update(ctx, uuid.NewString(), ownerB, patch)

	require.Equal(t, apperrors.ToDomainError(missing), apperrors.ToDomainError(foreign))
	require.True(t, apperrors.HasCode(foreign, apperrors.CodeNotFound))

	foreignDel := svc.Delete(ctx, job.ID, ownerB)
	missingDel := svc.Delete(ctx, uuid.NewString(), ownerB)
	require.Equal(t, apperrors.ToDomainError(missingDel), apperrors.ToDomainError(foreignDel))
	require.Equal(t, apperrors.ToDomainError(foreign), apperrors.ToDomainError(foreignDel))

	list, err := svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Eng", list[0].Title)
}

func TestJobUpdate_InvalidIdentifierSkipsStore(t *testing.T) {
	repo := &countingJobRepo{JobRepository: memory.NewJobStore()}
	svc := newJobService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "not-an-id", ownerA, domain.JobPatch{Title: strPtr("x")})
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidIdentifier))

	err = svc.Delete(context.Background(), "12345", ownerA)
	require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidIdentifier))
	require.Zero(t, repo.calls)
}

func TestJobUpdate_PartialPatchAndValidation(t *testing.T) {
	ctx := context.Background()
	svc := newJobService(memory.NewJobStore(), nil, nil)
	job, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, job.ID, ownerA, domain.JobPatch{Title: strPtr("Sr Eng")})
	require.NoError(t, err)
	require.Equal(t, "Sr Eng", updated.Title)
	require.Equal(t, "Acme", updated.Company)
	require.Equal(t, "Build stuff", updated.Description)
	require.Equal(t, ownerA, updated.CreatedBy)

	_, err = svc.Update(ctx, job.ID, ownerA, domain.JobPatch{Company: strPtr("")})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestJobUpdate_UnchangedRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newJobService(memory.NewJobStore(), nil, nil)
	created, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, ownerA, domain.JobPatch{
		Title:       strPtr(created.Title),
		Company:     strPtr(created.Company),
		Description: strPtr(created.Description),
	})
	require.NoError(t, err)

	list, err := svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, list, 1)
	fetched := list[0]
	require.Equal(t, updated.UpdatedAt, fetched.UpdatedAt)

	fetched.UpdatedAt = created.UpdatedAt
	require.Equal(t, *created, fetched)
}

func TestJobUpdate_AcceptsNonCanonicalIdentifier(t *testing.T) {
	ctx := context.Background()
	svc := newJobService(memory.NewJobStore(), nil, nil)
	job, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, "urn:uuid:"+job.ID, ownerA, domain.JobPatch{Title: strPtr("Lead")})
	require.NoError(t, err)
}

func TestJobDelete(t *testing.T) {
	ctx := context.Background()
	svc := newJobService(memory.NewJobStore(), nil, nil)
	job, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, job.ID, ownerA))
	require.True(t, apperrors.HasCode(svc.Delete(ctx, job.ID, ownerA), apperrors.CodeNotFound))

	list, err := svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestJobService_RequiresOwner(t *testing.T) {
	svc := newJobService(memory.NewJobStore(), nil, nil)

	_, err := svc.Create(context.Background(), "", validInput())
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
	_, err = svc.ListMine(context.Background(), "")
	require.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestJobService_CacheReadThroughAndInvalidation(t *testing.T) {
	ctx := context.Background()
	repo := &countingJobRepo{JobRepository: memory.NewJobStore()}
	listCache := newMapCache()
	svc := newJobService(repo, listCache, nil)

	job, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)
	require.Equal(t, []string{ownerA}, listCache.invalidated)

	_, err = svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	callsAfterMiss := repo.calls

	cached, err := svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	require.Equal(t, callsAfterMiss, repo.calls)
	require.Len(t, cached, 1)

	require.NoError(t, svc.Delete(ctx, job.ID, ownerA))
	_, ok := listCache.current(ownerA)
	require.False(t, ok)

	list, err := svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestJobService_ListingReadDuringDeleteIsNotCached(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &pausingJobRepo{JobRepository: memory.NewJobStore()}
	svc := newJobService(repo, cache.NewRedisJobCache(client, time.Minute), nil)

	job, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)

	reached, release := repo.pauseNextList()
	listed := make(chan error, 1)
	go func() {
		_, err := svc.ListMine(ctx, ownerA)
		listed <- err
	}()

	<-reached
	require.NoError(t, svc.Delete(ctx, job.ID, ownerA))
	close(release)
	require.NoError(t, <-listed)

	list, err := svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestJobService_CacheFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	listCache := newMapCache()
	listCache.failReads = true
	svc := newJobService(memory.NewJobStore(), listCache, nil)

	_, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)

	list, err := svc.ListMine(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestJobService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	record := func(_ context.Context, e events.Event) error {
		require.Equal(t, ownerA, e.ActorID)
		seen = append(seen, e.Type)
		return nil
	}
	dispatcher.Subscribe(record, events.EventJobCreated, events.EventJobUpdated, events.EventJobDeleted)

	svc := newJobService(memory.NewJobStore(), nil, dispatcher)
	job, err := svc.Create(ctx, ownerA, validInput())
	require.NoError(t, err)
	_, err = svc.Update(ctx, job.ID, ownerA, domain.JobPatch{Title: strPtr("Lead")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, job.ID, ownerA))

	_, _ = svc.Update(ctx, job.ID, ownerB, domain.JobPatch{Title: strPtr("x")})

	require.Equal(t, []events.EventType{events.EventJobCreated, events.EventJobUpdated, events.EventJobDeleted}, seen)
}
