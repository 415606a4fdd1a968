package obs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvei-client/internal/obs"
)

func TestGatewayMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := obs.NewGatewayMetrics("nuvei", []float64{100, 10}, reg)

	stop := m.Start()
	require.Equal(t, float64(1), testutil.ToFloat64(m.InFlight))
	stop()
	m.Observe("payment", obs.OutcomeSuccess, 42*time.Millisecond)

	require.Equal(t, float64(0), testutil.ToFloat64(m.InFlight))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("payment", obs.OutcomeSuccess)))
	require.Equal(t, 1, testutil.CollectAndCount(m.Duration))

	again := obs.NewGatewayMetrics("nuvei", nil, reg)
	require.Same(t, m.Requests, again.Requests)
}

func TestNilGatewayMetricsIsNoop(t *testing.T) {
	var m *obs.GatewayMetrics
	m.Observe("payment", obs.OutcomeAPI, time.Second)
	m.Start()()
}

func TestParseBucketsCSV(t *testing.T) {
	require.Equal(t, []float64{5, 10.5}, obs.ParseBucketsCSV("5, 10.5, x, -1"))
	require.Nil(t, obs.ParseBucketsCSV(" "))
}

func TestNewLoggerToLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := obs.NewLoggerTo(&buf, "json", "warn")
	logger.Info().Msg("hidden")
	logger.Warn().Str("operation", "payment").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["message"])
	require.Equal(t, "payment", line["operation"])
}

func TestRequestLoggerUsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(obs.RequestLogger{Logger: obs.NewLoggerTo(&buf, "json", "info")}.Middleware)
	r.Use(obs.TracingMiddleware)
	r.Post("/ppp/api/v1/{operation}.do", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ppp/api/v1/payment.do", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "/ppp/api/v1/{operation}.do", line["route"])
	require.EqualValues(t, http.StatusAccepted, line["status"])
	require.Equal(t, "payment", line["operation"])
}

func TestRequestLoggerDefaultsStatus(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(obs.TracingMiddleware)
	r.Use(obs.RequestLogger{Logger: obs.NewLoggerTo(&buf, "json", "info")}.Middleware)
	r.Get("/healthz", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.EqualValues(t, http.StatusOK, line["status"])
	require.NotContains(t, line, "operation")
}

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = obs.InitTracer(context.Background(), obs.TracingConfig{Enabled: true, Exporter: "jaeger"})
	require.Error(t, err)
}
