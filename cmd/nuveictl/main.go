package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nuvei-client/internal/config"
	"github.com/noah-isme/nuvei-client/internal/obs"
	"github.com/noah-isme/nuvei-client/internal/resilience"
	"github.com/noah-isme/nuvei-client/pkg/nuvei"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitSetup  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], config.Load, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, load func() (*config.Config, error), stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("nuveictl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		op      = fs.String("op", "", "operation to run, e.g. createUser")
		data    = fs.String("data", "{}", `request JSON, or "-" to read it from stdin`)
		list    = fs.Bool("list", false, "print the supported operations and exit")
		timeout = fs.Duration("timeout", time.Minute, "how long to wait for the outcome")
	)
	if err := fs.Parse(args); err != nil {
		return exitSetup
	}

	if *list {
		for _, name := range nuvei.Operations() {
			fmt.Fprintln(stdout, name)
		}
		return exitOK
	}
	if strings.TrimSpace(*op) == "" {
		fmt.Fprintln(stderr, "nuveictl: -op is required")
		fs.Usage()
		return exitSetup
	}

	payload, err := readPayload(*data, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "nuveictl: %v\n", err)
		return exitSetup
	}

	cfg, err := load()
	if err != nil {
		fmt.Fprintf(stderr, "nuveictl: config: %v\n", err)
		return exitSetup
	}
	logger := obs.NewLoggerTo(stderr, cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.Environment).Logger()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracingConfig{
		Enabled:       cfg.Obs.EnableTracing,
		ServiceName:   "nuveictl",
		Endpoint:      cfg.Obs.OTLPEndpoint,
		SamplingRatio: cfg.Obs.SamplingRatio,
		Environment:   cfg.Environment,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error().Err(err).Msg("shutdown tracer")
			}
		}()
	}

	if cfg.Obs.MetricsAddr != "" {
		stopMetrics := serveMetrics(cfg.Obs.MetricsAddr, logger)
		defer stopMetrics()
	}

	client, err := nuvei.NewFromConfig(ctx, cfg, nuvei.WithLogger(logger))
	if err != nil {
		logger.Error().Err(err).Msg("initialise client")
		return exitSetup
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("close client")
		}
	}()

	waitCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	resp, err := client.Call(ctx, *op, payload).Wait(waitCtx)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err != nil {
		_ = enc.Encode(failureOutput(err))
		return exitFailed
	}
	_ = enc.Encode(resp)
	return exitOK
}

func readPayload(raw string, stdin io.Reader) (nuvei.Request, error) {
	var r io.Reader = strings.NewReader(raw)
	if raw == "-" {
		r = stdin
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var payload nuvei.Request
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode -data: %w", err)
	}
	if payload == nil {
		payload = nuvei.Request{}
	}
	return payload, nil
}

func failureOutput(err error) any {
	var (
		verr   *nuvei.ValidationError
		apiErr *nuvei.APIError
	)
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.As(err, &apiErr):
		if apiErr.Body != nil {
			return apiErr.Body
		}
		return map[string]any{"status": apiErr.StatusCode, "errCode": apiErr.ErrCode, "reason": apiErr.Error()}
	default:
		return map[string]any{"reason": err.Error()}
	}
}

func serveMetrics(addr string, logger zerolog.Logger) func() {
	if err := resilience.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		logger.Error().Err(err).Msg("register breaker metrics")
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server exited unexpectedly")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown metrics server")
		}
	}
}
