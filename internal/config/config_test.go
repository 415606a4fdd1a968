package config_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvei-client/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"NUVEI_MERCHANT_ID":           "123",
		"NUVEI_MERCHANT_SITE_ID":      "456",
		"NUVEI_SECRET_KEY":            "s3cr3t",
		"NUVEI_ENV":                   "",
		"NUVEI_ALGORITHM":             "",
		"NUVEI_ERR_LOCALE":            "",
		"NUVEI_REQUEST_VALIDATION":    "",
		"NUVEI_BASE_URL":              "",
		"NUVEI_TIMEZONE":              "",
		"NUVEI_HTTP_TIMEOUT":          "",
		"NUVEI_BREAKER_MIN_REQUESTS":  "",
		"NUVEI_BREAKER_FAILURE_RATIO": "",
		"NUVEI_RATE_LIMIT":            "",
		"NUVEI_SESSION_REDIS_URL":     "",
		"NUVEI_SESSION_TTL":           "",
		"OBS_LOG_FORMAT":              "",
		"OBS_ENABLE_TRACING":          "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "123", cfg.MerchantID)
	require.Equal(t, "prod", cfg.Environment)
	require.Equal(t, "sha256", cfg.Algorithm)
	require.Equal(t, "en", cfg.ErrLocale)
	require.True(t, cfg.RequestValidation)
	require.Equal(t, time.UTC, cfg.Location)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 0, cfg.BreakerMinRequests)
	require.Equal(t, 0.5, cfg.BreakerFailureRatio)
	require.Equal(t, 15*time.Minute, cfg.SessionTTL)
	require.Equal(t, "json", cfg.Obs.LogFormat)
	require.False(t, cfg.Obs.EnableTracing)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["NUVEI_ENV"] = "int"
	env["NUVEI_ALGORITHM"] = "md5"
	env["NUVEI_REQUEST_VALIDATION"] = "false"
	env["NUVEI_TIMEZONE"] = "Asia/Jakarta"
	env["NUVEI_HTTP_TIMEOUT"] = "5s"
	env["NUVEI_BREAKER_MIN_REQUESTS"] = "10"
	env["NUVEI_RATE_LIMIT"] = "100-M"
	env["NUVEI_SESSION_TTL"] = "bogus"
	env["OBS_ENABLE_TRACING"] = "yes"

	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, "int", cfg.Environment)
	require.Equal(t, "md5", cfg.Algorithm)
	require.False(t, cfg.RequestValidation)
	require.Equal(t, "Asia/Jakarta", cfg.Location.String())
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 10, cfg.BreakerMinRequests)
	require.Equal(t, "100-M", cfg.RateLimit)
	require.Equal(t, 15*time.Minute, cfg.SessionTTL)
	require.True(t, cfg.Obs.EnableTracing)
}

func TestLoadReportsEveryMissingCredential(t *testing.T) {
	env := baseEnv()
	env["NUVEI_MERCHANT_ID"] = ""
	env["NUVEI_SECRET_KEY"] = ""
	env["NUVEI_TIMEZONE"] = "Mars/Olympus"

	_, err := config.LoadForTests(env)
	require.Error(t, err)
	require.Contains(t, err.Error(), "NUVEI_MERCHANT_ID is required")
	require.Contains(t, err.Error(), "NUVEI_SECRET_KEY is required")
	require.Contains(t, err.Error(), "NUVEI_TIMEZONE")
}
