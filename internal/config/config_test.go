package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		DatabaseURL:      "postgres://localhost/projecthub",
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    168 * time.Hour,
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())

	t.Run("missing database URL is fatal", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing signing secrets are fatal", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTAccessSecret = ""
		assert.Error(t, cfg.Validate())

		cfg = validConfig()
		cfg.JWTRefreshSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("shared secret across token classes is fatal", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTRefreshSecret = cfg.JWTAccessSecret
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive lifetimes are fatal", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTAccessTTL = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/projecthub")
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("RATE_LIMIT_RPM", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, 250, cfg.RateLimitRPM)
}
