package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("WEIGHT_TOLERANCE_KG")
	os.Unsetenv("SUPPLEMENT_RATE_PER_KG")
	os.Unsetenv("CURRENCY")
	os.Unsetenv("PAYMENT_INTENT_TTL_HOURS")

	os.Setenv("REDIS_URL", "redis://localhost:6379")
	defer os.Unsetenv("REDIS_URL")

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 0.2, cfg.Depot.WeightToleranceKg)
	assert.Equal(t, 5.0, cfg.Depot.SupplementRatePerKg)
	assert.Equal(t, "USD", cfg.Depot.Currency)
	assert.Equal(t, 24, cfg.Depot.PaymentIntentTTLHours)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("REDIS_URL", "redis://redis.internal:6379")
	os.Setenv("WEIGHT_TOLERANCE_KG", "0.5")
	os.Setenv("SUPPLEMENT_RATE_PER_KG", "7.5")
	os.Setenv("CURRENCY", "CDF")
	os.Setenv("PAYMENT_INTENT_TTL_HOURS", "48")
	defer func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("REDIS_URL")
		os.Unsetenv("WEIGHT_TOLERANCE_KG")
		os.Unsetenv("SUPPLEMENT_RATE_PER_KG")
		os.Unsetenv("CURRENCY")
		os.Unsetenv("PAYMENT_INTENT_TTL_HOURS")
	}()

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "redis://redis.internal:6379", cfg.RedisURL)
	assert.Equal(t, 0.5, cfg.Depot.WeightToleranceKg)
	assert.Equal(t, 7.5, cfg.Depot.SupplementRatePerKg)
	assert.Equal(t, "CDF", cfg.Depot.Currency)
	assert.Equal(t, 48, cfg.Depot.PaymentIntentTTLHours)
}

// TestLoad_MissingRequired verifies that a missing required variable fails the load.
func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("REDIS_URL")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "REDIS_URL")
}
