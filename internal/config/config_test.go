package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8900", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "golink", cfg.Store.Namespace)
	assert.Equal(t, "main", cfg.Store.Database)
	assert.Equal(t, time.Second, cfg.Store.MonitorInterval)
	assert.Equal(t, 60*time.Second, cfg.Redis.ProfileTTL)
	assert.True(t, cfg.Auth.SecureCookies)
	assert.Empty(t, cfg.Auth.AdminUsers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "0123456789abcdef")
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("STORE_DATABASE", "staging")
	t.Setenv("ADMIN_USERS", "1, 2,,3")
	t.Setenv("API_KEYS", "k1:ci, k2:deploy, broken")
	t.Setenv("REDIS_PROFILE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "staging", cfg.Store.Database)
	assert.False(t, cfg.Auth.SecureCookies)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.Auth.AdminUsers)
	assert.Equal(t, map[string]string{"k1": "ci", "k2": "deploy"}, cfg.Auth.APIKeys)
	assert.Equal(t, 30*time.Second, cfg.Redis.ProfileTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"short secret", map[string]string{"SESSION_SECRET": "short"}},
		{"unknown driver", map[string]string{"SESSION_SECRET": "0123456789abcdef", "STORE_DRIVER": "sqlite"}},
		{"bad rate limit", map[string]string{"SESSION_SECRET": "0123456789abcdef", "RATE_LIMIT_RPS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
