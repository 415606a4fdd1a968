package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds client configuration loaded from the environment.
type Config struct {
	MerchantID        string
	MerchantSiteID    string
	SecretKey         string
	Environment       string
	Algorithm         string
	ErrLocale         string
	RequestValidation bool
	BaseURL           string
	Location          *time.Location

	HTTPTimeout         time.Duration
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenFor      time.Duration
	RateLimit           string

	SessionRedisURL string
	SessionTTL      time.Duration

	Obs ObsConfig
}

// ObsConfig controls logging, tracing and metrics.
type ObsConfig struct {
	LogFormat      string
	LogLevel       string
	EnableTracing  bool
	OTLPEndpoint   string
	SamplingRatio  float64
	MetricsNS      string
	MetricsAddr    string
	MetricsBuckets string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		MerchantID:        strings.TrimSpace(k.String("NUVEI_MERCHANT_ID")),
		MerchantSiteID:    strings.TrimSpace(k.String("NUVEI_MERCHANT_SITE_ID")),
		SecretKey:         k.String("NUVEI_SECRET_KEY"),
		Environment:       valueOrDefault(k.String("NUVEI_ENV"), "prod"),
		Algorithm:         valueOrDefault(k.String("NUVEI_ALGORITHM"), "sha256"),
		ErrLocale:         valueOrDefault(k.String("NUVEI_ERR_LOCALE"), "en"),
		RequestValidation: parseBoolDefault(k.String("NUVEI_REQUEST_VALIDATION"), true),
		BaseURL:           strings.TrimSpace(k.String("NUVEI_BASE_URL")),

		HTTPTimeout:         parseDuration(k.String("NUVEI_HTTP_TIMEOUT"), "30s"),
		BreakerMinRequests:  parseInt(k.String("NUVEI_BREAKER_MIN_REQUESTS"), 0),
		BreakerFailureRatio: parseFloat(k.String("NUVEI_BREAKER_FAILURE_RATIO"), 0.5),
		BreakerOpenFor:      parseDuration(k.String("NUVEI_BREAKER_OPEN_FOR"), "30s"),
		RateLimit:           strings.TrimSpace(k.String("NUVEI_RATE_LIMIT")),

		SessionRedisURL: strings.TrimSpace(k.String("NUVEI_SESSION_REDIS_URL")),
		SessionTTL:      parseDuration(k.String("NUVEI_SESSION_TTL"), "15m"),

		Obs: ObsConfig{
			LogFormat:      valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:       valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			EnableTracing:  parseBoolDefault(k.String("OBS_ENABLE_TRACING"), false),
			OTLPEndpoint:   strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:  parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),
			MetricsNS:      valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "nuvei"),
			MetricsAddr:    strings.TrimSpace(k.String("OBS_METRICS_ADDR")),
			MetricsBuckets: strings.TrimSpace(k.String("OBS_METRICS_BUCKETS_MS")),
		},
	}

	var errs []error
	if cfg.MerchantID == "" {
		errs = append(errs, errors.New("NUVEI_MERCHANT_ID is required"))
	}
	if cfg.MerchantSiteID == "" {
		errs = append(errs, errors.New("NUVEI_MERCHANT_SITE_ID is required"))
	}
	if cfg.SecretKey == "" {
		errs = append(errs, errors.New("NUVEI_SECRET_KEY is required"))
	}
	loc, err := time.LoadLocation(valueOrDefault(k.String("NUVEI_TIMEZONE"), "UTC"))
	if err != nil {
		errs = append(errs, fmt.Errorf("NUVEI_TIMEZONE: %w", err))
	}
	cfg.Location = loc
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
