package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MAIL_API_KEY", "mail-key")
	t.Setenv("CRON_SECRET", "cron-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "clinic_", cfg.Mongo.DatabasePrefix)
	assert.Equal(t, "stock", cfg.Mongo.StockDatabase)
	assert.Equal(t, 168*time.Hour, cfg.Session.SessionTTL)
	assert.Equal(t, 60*time.Second, cfg.Session.RoleTTL)
	assert.Equal(t, "clinic_session", cfg.Session.CookieName)
	assert.Equal(t, "test-secret", cfg.Session.Secret)
	assert.Equal(t, "cron-secret", cfg.Cron.Secret)
	assert.Empty(t, cfg.Redis.Addr, "redis is opt-in")
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9000")
	t.Setenv("MONGO_DB_PREFIX", "tenant_")
	t.Setenv("ROLE_TTL", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "tenant_", cfg.Mongo.DatabasePrefix)
	assert.Equal(t, 30*time.Second, cfg.Session.RoleTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadBadDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}
