package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
	require.Equal(t, "*", cfg.App.CORSOrigins)
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.Equal(t, 30*time.Second, cfg.Redis.JobsTTL)
	require.Empty(t, cfg.Redis.Addr)
	require.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	require.True(t, cfg.Postgres.RunMigrations)
	require.Zero(t, cfg.App.RequestTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_DSN", "postgres://jobs@localhost/jobs")
	t.Setenv("APP_CORS_ORIGINS", "http://localhost:3000,https://jobs.example.com")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	require.Equal(t, "postgres://jobs@localhost/jobs", cfg.Postgres.DSN)
	require.Equal(t, "http://localhost:3000,https://jobs.example.com", cfg.App.CORSOrigins)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.ErrorContains(t, err, "AUTH_JWT_SECRET")
}

func TestValidate_BcryptCost(t *testing.T) {
	cfg := Config{Auth: AuthConfig{JWTSecret: "s", BcryptCost: 2}}
	require.ErrorContains(t, cfg.Validate(), "AUTH_BCRYPT_COST")

	cfg.Auth.BcryptCost = 10
	require.NoError(t, cfg.Validate())
}
