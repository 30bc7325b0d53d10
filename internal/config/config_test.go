package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_USER", "gym")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "gym_test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MOMO_PARTNER_CODE", "MOMO")
	t.Setenv("MOMO_ACCESS_KEY", "access")
	t.Setenv("MOMO_SECRET_KEY", "secret-key")
	t.Setenv("MOMO_REDIRECT_URL", "http://localhost/return")
	t.Setenv("MOMO_IPN_URL", "http://localhost/ipn")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 60, cfg.AccessTTL)
	assert.Equal(t, "https://test-payment.momo.vn/v2/gateway/api/create", cfg.Momo.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Momo.Timeout)
	assert.Equal(t, "@every 1m", cfg.SweepSchedule)
	assert.True(t, cfg.Cache.MethodSet()["GET"])
	assert.Equal(t, "localhost:6379", cfg.Redis.address())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MOMO_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("CACHE_METHODS", "get,head")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Momo.Timeout)
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, 5*time.Second, cfg.RateLimit.TTL)
	assert.Equal(t, "cache:6380", cfg.Redis.address())
	assert.True(t, cfg.Cache.MethodSet()["HEAD"])
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
