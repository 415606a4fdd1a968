package obs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway call outcomes used as metric and log labels.
const (
	OutcomeSuccess     = "success"
	OutcomeValidation  = "validation_error"
	OutcomeTransport   = "transport_error"
	OutcomeAPI         = "api_error"
	OutcomeUnsupported = "unsupported"
	OutcomeBuild       = "build_error"
)

// GatewayMetrics groups Prometheus collectors for outbound gateway calls.
type GatewayMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewGatewayMetrics registers and returns gateway collectors. Registering
// twice on the same registerer reuses the collectors already there.
func NewGatewayMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}
	} else {
		sort.Float64s(buckets)
	}
	m := &GatewayMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of gateway calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_ms",
			Help:      "Gateway call latency distribution in milliseconds.",
			Buckets:   buckets,
		}, []string{"operation"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gateway_in_flight_requests",
			Help:      "Current number of gateway calls awaiting a reply.",
		}),
	}
	mustRegisterCollector(reg, m.Requests, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.Requests = v
		}
	})
	mustRegisterCollector(reg, m.Duration, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.HistogramVec); ok {
			m.Duration = v
		}
	})
	mustRegisterCollector(reg, m.InFlight, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Gauge); ok {
			m.InFlight = v
		}
	})
	return m
}

// Observe records one finished call. A nil receiver is a no-op.
func (m *GatewayMetrics) Observe(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(operation, outcome).Inc()
	m.Duration.WithLabelValues(operation).Observe(DurationMillis(d))
}

// Start marks a call as in flight and returns the func that clears it.
func (m *GatewayMetrics) Start() func() {
	if m == nil || m.InFlight == nil {
		return func() {}
	}
	m.InFlight.Inc()
	return m.InFlight.Dec
}

// ParseBucketsCSV converts a comma-separated list of bucket boundaries (milliseconds) into floats.
func ParseBucketsCSV(csv string) []float64 {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register gateway metric: %w", err))
	}
}
