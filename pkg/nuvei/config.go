package nuvei

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/nuvei-client/internal/config"
	"github.com/noah-isme/nuvei-client/internal/obs"
	"github.com/noah-isme/nuvei-client/internal/resilience"
	"github.com/noah-isme/nuvei-client/internal/session"
)

// Config is the environment configuration read by LoadConfig.
type Config = config.Config

// LoadConfig reads NUVEI_* and OBS_* variables, and a .env file when present.
func LoadConfig() (*Config, error) {
	return config.Load()
}

// NewFromConfig builds a client from environment configuration. When a
// session Redis URL is set, session tokens and rate-limit counters are shared
// through it and Close releases the connection. The breaker, when enabled,
// is labelled with the environment. opts are applied last.
func NewFromConfig(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("nuvei: nil config")
	}

	var base []Option
	base = append(base,
		WithTimeout(cfg.HTTPTimeout),
		WithBaseURL(cfg.BaseURL),
		WithLocation(cfg.Location),
		WithMetrics(obs.NewGatewayMetrics(cfg.Obs.MetricsNS, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), prometheus.DefaultRegisterer)),
	)
	if cfg.BreakerMinRequests > 0 {
		breaker := resilience.NewBreaker(cfg.BreakerMinRequests, cfg.BreakerFailureRatio, cfg.BreakerOpenFor).
			WithTarget(cfg.Environment)
		base = append(base, WithBreaker(breaker))
	}

	var limiterStore limiter.Store
	if cfg.SessionRedisURL != "" {
		rdb, err := session.Dial(ctx, cfg.SessionRedisURL)
		if err != nil {
			return nil, err
		}
		base = append(base,
			WithSessionStore(session.NewRedisStore(rdb, cfg.SessionTTL)),
			withCloser(rdb.Close),
		)
		if cfg.RateLimit != "" {
			limiterStore, err = resilience.NewRedisLimiterStore(rdb)
			if err != nil {
				_ = rdb.Close()
				return nil, fmt.Errorf("nuvei: limiter store: %w", err)
			}
		}
	} else {
		base = append(base, WithSessionStore(session.NewMemoryStore(cfg.SessionTTL)))
	}
	lim, err := resilience.NewLimiter(cfg.RateLimit, limiterStore)
	if err != nil {
		closeAll(base)
		return nil, err
	}
	if lim != nil {
		base = append(base, WithLimiter(lim))
	}

	client, err := New(cfg.MerchantID, cfg.MerchantSiteID, cfg.SecretKey, cfg.Environment, append(base, opts...)...)
	if err != nil {
		closeAll(base)
		return nil, err
	}
	if err := client.SetAlgorithm(cfg.Algorithm); err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.SetErrLocale(cfg.ErrLocale); err != nil {
		_ = client.Close()
		return nil, err
	}
	client.SetRequestValidation(cfg.RequestValidation)
	return client, nil
}

func closeAll(opts []Option) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	for _, fn := range o.closers {
		_ = fn()
	}
}
