package nuvei

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/nuvei-client/internal/gateway"
	"github.com/noah-isme/nuvei-client/internal/obs"
	"github.com/noah-isme/nuvei-client/internal/resilience"
	"github.com/noah-isme/nuvei-client/internal/schema"
)

type (
	// Transport performs one HTTP exchange for the client.
	Transport = gateway.Transport
	// TransportFunc adapts a function to Transport.
	TransportFunc = gateway.TransportFunc
	// SessionStore caches session tokens per merchant site.
	SessionStore = gateway.SessionStore
	// Metrics holds the Prometheus collectors for gateway calls.
	Metrics = obs.GatewayMetrics
	// Breaker fails calls fast while the gateway is unhealthy.
	Breaker = resilience.Breaker
	// SchemaRegistry maps operations to request schemas.
	SchemaRegistry = schema.Registry
)

// NewMetrics registers gateway collectors on reg, or the default registerer
// when reg is nil.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	return obs.NewGatewayMetrics(namespace, nil, reg)
}

// NewBreaker returns a breaker that opens once failureRatio of at least
// minRequests calls failed, for openFor.
func NewBreaker(minRequests int, failureRatio float64, openFor time.Duration) *Breaker {
	return resilience.NewBreaker(minRequests, failureRatio, openFor)
}

// DefaultTimeout bounds one gateway exchange unless WithTimeout says otherwise.
const DefaultTimeout = 30 * time.Second

type options struct {
	transport  gateway.Transport
	httpClient *http.Client
	timeout    time.Duration
	breaker    *resilience.Breaker
	limiter    *limiter.Limiter
	baseURL    string
	logger     *zerolog.Logger
	metrics    *obs.GatewayMetrics
	tracer     trace.Tracer
	sessions   gateway.SessionStore
	schemas    *schema.Registry
	location   *time.Location
	now        func() time.Time
	newID      func() string
	closers    []func() error
}

// Option customises a Client.
type Option func(*options)

// WithTransport replaces the HTTP layer entirely. Breaker, limiter and
// timeout options are ignored when it is set.
func WithTransport(t gateway.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithHTTPClient sends requests through c instead of the traced default.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds each exchange, body read included.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithBreaker fails calls fast while the gateway keeps returning 5xx. When a
// logger is also given, the breaker logs its transitions to it.
func WithBreaker(b *resilience.Breaker) Option {
	return func(o *options) { o.breaker = b }
}

// WithLimiter throttles outbound calls per merchant site.
func WithLimiter(l *limiter.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithBaseURL sends every call to origin instead of the environment's host.
func WithBaseURL(origin string) Option {
	return func(o *options) { o.baseURL = origin }
}

// WithLogger sets the logger used when the call context carries none.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithMetrics records call counts and latency.
func WithMetrics(m *obs.GatewayMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer sets the tracer for gateway spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithSessionStore shares session tokens through s.
func WithSessionStore(s gateway.SessionStore) Option {
	return func(o *options) { o.sessions = s }
}

// WithSchemas validates requests against r instead of the default registry.
func WithSchemas(r *schema.Registry) Option {
	return func(o *options) { o.schemas = r }
}

// WithLocation renders timeStamp in loc instead of UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// WithClock replaces time.Now for request stamping.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRequestIDs replaces the clientRequestId generator.
func WithRequestIDs(next func() string) Option {
	return func(o *options) { o.newID = next }
}

func withCloser(fn func() error) Option {
	return func(o *options) { o.closers = append(o.closers, fn) }
}
