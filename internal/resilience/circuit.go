// Package resilience guards outbound gateway traffic: a failure-ratio circuit
// breaker, an optional rate limiter and a single-attempt HTTP client that
// applies both.
package resilience

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var breakerNopLogger = zerolog.Nop()

// ErrOpenCircuit is returned when the circuit breaker refuses a request.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State represents the current breaker state.
type State int

const (
	// Closed accepts all requests and tracks failures.
	Closed State = iota
	// Open rejects requests until the cool-off period expires.
	Open
	// HalfOpen lets one probe through to test recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// gauge is the value exported on gateway_breaker_state.
func (s State) gauge() float64 {
	switch s {
	case Closed, Open, HalfOpen:
		return float64(s)
	default:
		return -1
	}
}

// Breaker judges the gateway on its most recent outcomes. Once at least
// minRequests outcomes are known and the share of failures among the last
// window reaches failureRatio it opens for openFor.
type Breaker struct {
	minRequests  int
	failureRatio float64
	openFor      time.Duration

	mu       sync.Mutex
	state    State
	window   outcomeWindow
	openedAt time.Time
	probing  bool
	target   string
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewBreaker constructs a closed breaker. Non-positive arguments fall back to
// one request, a ratio of 0.5 and thirty seconds. The window holds twice
// minRequests outcomes.
func NewBreaker(minRequests int, failureRatio float64, openFor time.Duration) *Breaker {
	if minRequests <= 0 {
		minRequests = 1
	}
	if failureRatio <= 0 {
		failureRatio = 0.5
	}
	if failureRatio > 1 {
		failureRatio = 1
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return &Breaker{
		minRequests:  minRequests,
		failureRatio: failureRatio,
		openFor:      openFor,
		window:       newOutcomeWindow(2 * minRequests),
		now:          time.Now,
	}
}

// Allow reports whether a request may proceed. After the cool-off an open
// breaker moves to half-open and admits a single probe; further requests are
// refused until that probe is reported.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.openedAt) < b.openFor {
			return false
		}
		b.moveLocked(ctx, HalfOpen)
	}
	if b.probing {
		return false
	}
	b.probing = true
	return true
}

// Report records the outcome of an admitted request.
func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
	case HalfOpen:
		b.probing = false
		if success {
			b.moveLocked(ctx, Closed)
		} else {
			b.moveLocked(ctx, Open)
		}
	default:
		b.window.add(success)
		if b.window.len() >= b.minRequests && b.window.failureRatio() >= b.failureRatio {
			b.moveLocked(ctx, Open)
		}
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// WithTarget names the gateway for metric labels and logs, typically the
// environment or merchant site.
func (b *Breaker) WithTarget(target string) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = strings.TrimSpace(target)
	BreakerState.WithLabelValues(b.label()).Set(b.state.gauge())
	return b
}

// WithLogger configures the logger used for transition events.
func (b *Breaker) WithLogger(logger zerolog.Logger) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = &logger
	return b
}

// WithClock replaces time.Now, for tests.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now != nil {
		b.now = now
	}
	return b
}

func (b *Breaker) moveLocked(ctx context.Context, next State) {
	prev := b.state
	b.state = next
	b.window.reset()
	if next == Open {
		b.openedAt = b.now()
	}

	label := b.label()
	BreakerState.WithLabelValues(label).Set(next.gauge())
	if prev == next {
		return
	}
	BreakerTransitions.WithLabelValues(label, prev.String(), next.String()).Inc()
	if next == Open {
		BreakerOpenedTotal.WithLabelValues(label).Inc()
	}

	logger := b.logger
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger.GetLevel() != zerolog.Disabled {
		logger = ctxLogger
	}
	if logger == nil {
		logger = &breakerNopLogger
	}
	evt := logger.Warn()
	if next == Closed {
		evt = logger.Info()
	}
	evt = evt.Str("target", label).Str("from_state", prev.String()).Str("to_state", next.String())
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		evt = evt.Str("trace_id", sc.TraceID().String())
	}
	evt.Msg("breaker_transition")
}

func (b *Breaker) label() string {
	if b.target == "" {
		return "gateway"
	}
	return b.target
}

// outcomeWindow is a fixed-size ring of the most recent outcomes.
type outcomeWindow struct {
	failed   []bool
	next     int
	filled   int
	failures int
}

func newOutcomeWindow(size int) outcomeWindow {
	return outcomeWindow{failed: make([]bool, size)}
}

func (w *outcomeWindow) add(success bool) {
	if w.filled == len(w.failed) {
		if w.failed[w.next] {
			w.failures--
		}
	} else {
		w.filled++
	}
	w.failed[w.next] = !success
	if !success {
		w.failures++
	}
	w.next = (w.next + 1) % len(w.failed)
}

func (w *outcomeWindow) len() int { return w.filled }

func (w *outcomeWindow) failureRatio() float64 {
	if w.filled == 0 {
		return 0
	}
	return float64(w.failures) / float64(w.filled)
}

func (w *outcomeWindow) reset() {
	clear(w.failed)
	w.next, w.filled, w.failures = 0, 0, 0
}
