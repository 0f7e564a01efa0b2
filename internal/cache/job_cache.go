package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/jobboard/internal/domain"
	"github.com/spec-kit/jobboard/internal/service"
)

const jobListKeyPrefix = "jobs:owner:"

// RedisJobCache implements service.JobListCache backed by Redis.
//
// Each owner has a version counter. Listings are stored under a key that
// embeds the version they were read at, and Invalidate bumps the counter, so
// a listing read before a write can never be served after it.
type RedisJobCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ service.JobListCache = (*RedisJobCache)(nil)

// NewRedisJobCache constructs a cache whose entries expire after ttl.
func NewRedisJobCache(client redis.UniversalClient, ttl time.Duration) *RedisJobCache {
	return &RedisJobCache{client: client, ttl: ttl}
}

func versionKey(ownerID string) string {
	return jobListKeyPrefix + ownerID + ":version"
}

func jobListKey(ownerID string, version int64) string {
	return jobListKeyPrefix + ownerID + ":v" + strconv.FormatInt(version, 10)
}

// Version returns the owner's current listing version. Owners that were never
// invalidated are at version 0.
func (c *RedisJobCache) Version(ctx context.Context, ownerID string) (int64, error) {
	version, err := c.client.Get(ctx, versionKey(ownerID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("load job list version: %w", err)
	}
	return version, nil
}

// Get loads the listing cached at version. The boolean is false on a miss.
func (c *RedisJobCache) Get(ctx context.Context, ownerID string, version int64) ([]domain.Job, bool, error) {
	payload, err := c.client.Get(ctx, jobListKey(ownerID, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load job list: %w", err)
	}
	jobs := []domain.Job{}
	if err := json.Unmarshal(payload, &jobs); err != nil {
		return nil, false, fmt.Errorf("decode job list: %w", err)
	}
	return jobs, true, nil
}

// Set stores a listing read at version. A listing whose version has since
// been bumped lands under a key no reader asks for and simply expires.
func (c *RedisJobCache) Set(ctx context.Context, ownerID string, version int64, jobs []domain.Job) error {
	payload, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("marshal job list: %w", err)
	}
	if err := c.client.Set(ctx, jobListKey(ownerID, version), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("persist job list: %w", err)
	}
	return nil
}

// Invalidate bumps the owner's version and drops the listing cached at the
// previous one.
func (c *RedisJobCache) Invalidate(ctx context.Context, ownerID string) error {
	version, err := c.client.Incr(ctx, versionKey(ownerID)).Result()
	if err != nil {
		return fmt.Errorf("bump job list version: %w", err)
	}
	if err := c.client.Del(ctx, jobListKey(ownerID, version-1)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete job list: %w", err)
	}
	return nil
}
