package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/jobboard/internal/config"
)

const redisBootPing = 2 * time.Second

// ErrRedisDisabled is reported by readiness when REDIS_ADDR is unset.
var ErrRedisDisabled = errors.New("redis client not configured")

// Redis holds the connection behind the per-owner job list cache. It is
// optional: without an address every listing reads the job store directly.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client. An unreachable server at boot only logs a
// warning since cache calls fail open.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; job list cache disabled")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisBootPing)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; job listings bypass the cache until it recovers",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}

	return &Redis{Client: client}
}

func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.Client.Close()
	}
}

// Enabled reports whether the job list cache has a client.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// Ping backs the redis entry of the readiness report.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return ErrRedisDisabled
	}
	return r.Client.Ping(ctx).Err()
}
