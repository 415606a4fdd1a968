package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrRateLimited is returned when the local limiter refuses a request.
var ErrRateLimited = errors.New("resilience: outbound rate limit reached")

// HTTPClient sends each request exactly once, behind an optional rate
// limiter and circuit breaker. Payment calls are not idempotent, so nothing
// is retried.
type HTTPClient struct {
	Client  *http.Client
	Breaker *Breaker
	Limiter *limiter.Limiter
	// LimitKey groups requests for the limiter; empty means the URL host.
	LimitKey string
	// Timeout bounds the whole exchange including the body read.
	Timeout time.Duration
}

// NewHTTPClient returns an http.Client whose transport is traced with otelhttp.
func NewHTTPClient(timeout time.Duration) *http.Client {
	base := http.DefaultTransport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		clone := t.Clone()
		clone.MaxIdleConnsPerHost = 16
		base = clone
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(base),
	}
}

// NewLimiter builds a limiter from a rate such as "100-M". A nil store keeps
// counters in memory. An empty rate returns nil, which disables limiting.
func NewLimiter(formatted string, store limiter.Store) (*limiter.Limiter, error) {
	if formatted == "" {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("resilience: rate %q: %w", formatted, err)
	}
	if store == nil {
		store = memory.NewStore()
	}
	return limiter.New(store, rate), nil
}

// NewRedisLimiterStore shares limiter counters between processes.
func NewRedisLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "nuvei:limiter"})
}

// Do executes req once. Server errors (5xx) and transport failures count as
// breaker failures; any other reply is handed back to the caller.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	if err := cl.acquire(ctx, req); err != nil {
		return nil, err
	}
	if cl.Breaker != nil && !cl.Breaker.Allow(ctx) {
		return nil, ErrOpenCircuit
	}

	resp, err := cl.doOnce(ctx, req)
	if cl.Breaker != nil {
		cl.Breaker.Report(ctx, err == nil && resp.StatusCode < http.StatusInternalServerError)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (cl HTTPClient) acquire(ctx context.Context, req *http.Request) error {
	if cl.Limiter == nil {
		return nil
	}
	key := cl.LimitKey
	if key == "" {
		key = req.URL.Host
	}
	lctx, err := cl.Limiter.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("resilience: limiter: %w", err)
	}
	if lctx.Reached {
		RateLimitedTotal.WithLabelValues(key).Inc()
		return fmt.Errorf("%w: retry after %s", ErrRateLimited, time.Unix(lctx.Reset, 0).UTC().Format(time.RFC3339))
	}
	return nil
}

func (cl HTTPClient) doOnce(ctx context.Context, req *http.Request) (*http.Response, error) {
	timeout := cl.Timeout
	if timeout <= 0 {
		return cl.Client.Do(req.WithContext(ctx))
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	resp, err := cl.Client.Do(req.WithContext(callCtx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelOnClose releases the per-call timeout once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
