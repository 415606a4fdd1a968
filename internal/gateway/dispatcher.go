package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/nuvei-client/internal/endpoint"
	"github.com/noah-isme/nuvei-client/internal/obs"
	"github.com/noah-isme/nuvei-client/internal/schema"
)

// maxResponseBytes bounds how much of a reply is read.
const maxResponseBytes = 4 << 20

var dispatcherNopLogger = zerolog.Nop()

// Transport performs one HTTP exchange.
type Transport interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

// Do implements Transport.
func (f TransportFunc) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f(ctx, req)
}

// SessionStore caches session tokens per merchant site.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string) error
}

// SessionKey identifies the session token of one merchant site.
func SessionKey(merchantID, siteID string) string {
	return merchantID + ":" + siteID
}

// Dispatcher builds, validates and sends gateway calls. Settings, Transport
// and Schemas are required; the rest are optional.
type Dispatcher struct {
	Settings  *Settings
	Builder   Builder
	Schemas   *schema.Registry
	Transport Transport
	Sessions  SessionStore
	// BaseURL replaces the environment origin when set.
	BaseURL string
	Logger  *zerolog.Logger
	Metrics *obs.GatewayMetrics
	Tracer  trace.Tracer
}

// Call runs the named operation on data. It returns immediately; the
// returned Future completes once the outcome is known. data is not modified.
func (d *Dispatcher) Call(ctx context.Context, name string, data Request) *Future {
	op, ok := LookupOperation(name)
	if !ok {
		d.record(ctx, name, obs.OutcomeUnsupported, 0)
		return Resolved(data, nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name))
	}
	if op.Unsupported {
		d.record(ctx, op.Name, obs.OutcomeUnsupported, 0)
		return Resolved(data, nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op.Name))
	}

	snap := d.Settings.Snapshot()
	req, err := d.Builder.Build(op, snap, data)
	if err != nil {
		d.record(ctx, op.Name, obs.OutcomeBuild, 0)
		return Resolved(data, nil, err)
	}
	if op.AttachSession {
		d.attachSession(ctx, snap, req)
	}
	return d.Send(ctx, op, snap, req)
}

// Send validates req and, when it passes, posts it. A request that fails
// validation never reaches the transport. Cancelling ctx after Send returns
// does not abort the exchange.
func (d *Dispatcher) Send(ctx context.Context, op Operation, snap Snapshot, req Request) *Future {
	future := newFuture()
	start := time.Now()
	ctx, span := d.tracer().Start(ctx, "gateway."+op.Name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("gateway.operation", op.Name))

	if snap.Validation {
		res, err := d.Schemas.Validate(op.Name, req)
		if err != nil {
			d.finish(ctx, span, future, op, req, start, result{outcome: obs.OutcomeBuild, err: fmt.Errorf("gateway: %s: schema: %w", op.Name, err)})
			return future
		}
		if !res.Valid() {
			verr := &ValidationError{
				ErrCode:    ValidationErrCode,
				Reason:     res.Text(snap.ErrLocale),
				Violations: res.Violations,
			}
			d.finish(ctx, span, future, op, req, start, result{outcome: obs.OutcomeValidation, err: verr, errCode: ValidationErrCode})
			return future
		}
	}

	sendCtx := context.WithoutCancel(ctx)
	done := d.Metrics.Start()
	go func() {
		res := d.exchange(sendCtx, op, snap, req)
		if res.err == nil && op.IssuesSession {
			d.storeSession(sendCtx, snap, res.body)
		}
		done()
		d.finish(sendCtx, span, future, op, req, start, res)
	}()
	return future
}

type result struct {
	outcome string
	status  int
	errCode int64
	body    Response
	err     error
}

func (d *Dispatcher) exchange(ctx context.Context, op Operation, snap Snapshot, req Request) result {
	if d.Transport == nil {
		return result{outcome: obs.OutcomeTransport, err: &TransportError{Operation: op.Name, Err: errors.New("transport not configured")}}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return result{outcome: obs.OutcomeBuild, err: fmt.Errorf("gateway: %s: encode request: %w", op.Name, err)}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url(snap, op.Name), bytes.NewReader(payload))
	if err != nil {
		return result{outcome: obs.OutcomeBuild, err: fmt.Errorf("gateway: %s: new request: %w", op.Name, err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := d.Transport.Do(ctx, httpReq)
	if err != nil {
		return result{outcome: obs.OutcomeTransport, err: &TransportError{Operation: op.Name, Err: err}}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return result{outcome: obs.OutcomeTransport, status: resp.StatusCode, err: &TransportError{Operation: op.Name, Err: fmt.Errorf("read response: %w", err)}}
	}
	return normalise(op.Name, resp.StatusCode, raw)
}

// normalise maps a reply onto success or APIError. Success needs status 200
// and an errCode equal to zero.
func normalise(op string, status int, raw []byte) result {
	body, decodeErr := decodeResponse(raw)
	code, hasCode := body.ErrCode()
	res := result{status: status, errCode: code, body: body}

	if status == http.StatusOK && decodeErr == nil && hasCode && code == 0 {
		res.outcome = obs.OutcomeSuccess
		return res
	}
	apiErr := &APIError{
		Operation:  op,
		StatusCode: status,
		ErrCode:    code,
		Reason:     body.Reason(),
		Body:       body,
	}
	switch {
	case decodeErr != nil:
		apiErr.Err = decodeErr
	case status == http.StatusOK && !hasCode:
		apiErr.Err = errors.New("reply has no numeric errCode")
	}
	res.outcome = obs.OutcomeAPI
	res.body = nil
	res.err = apiErr
	return res
}

func decodeResponse(raw []byte) (Response, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty reply")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body Response
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return body, nil
}

func (d *Dispatcher) finish(ctx context.Context, span trace.Span, future *Future, op Operation, req Request, start time.Time, res result) {
	elapsed := time.Since(start)
	if res.status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", res.status))
	}
	span.SetAttributes(
		attribute.Int64("gateway.err_code", res.errCode),
		attribute.String("gateway.outcome", res.outcome),
	)
	if res.err != nil {
		span.RecordError(res.err)
		span.SetStatus(codes.Error, res.outcome)
	}
	span.End()

	d.Metrics.Observe(op.Name, res.outcome, elapsed)

	logger := d.loggerFor(ctx)
	var evt *zerolog.Event
	if res.err != nil {
		evt = logger.Warn()
	} else {
		evt = logger.Info()
	}
	evt = evt.Str("operation", op.Name).
		Str("client_request_id", req.String("clientRequestId")).
		Str("outcome", res.outcome).
		Int64("duration_ms", elapsed.Milliseconds())
	if res.status != 0 {
		evt = evt.Int("status", res.status)
	}
	if res.outcome != obs.OutcomeSuccess && res.errCode != 0 {
		evt = evt.Int64("err_code", res.errCode)
	}
	if traceID := span.SpanContext().TraceID(); traceID.IsValid() {
		evt = evt.Str("trace_id", traceID.String())
	}
	evt.Msg("gateway_request")

	future.resolve(Outcome{Request: req, Response: res.body, Err: res.err})
}

func (d *Dispatcher) record(ctx context.Context, op, outcome string, elapsed time.Duration) {
	d.Metrics.Observe(op, outcome, elapsed)
	d.loggerFor(ctx).Warn().Str("operation", op).Str("outcome", outcome).Msg("gateway_request")
}

func (d *Dispatcher) attachSession(ctx context.Context, snap Snapshot, req Request) {
	if d.Sessions == nil {
		return
	}
	if _, ok := req["sessionToken"]; ok {
		return
	}
	token, ok, err := d.Sessions.Get(ctx, SessionKey(snap.MerchantID, snap.MerchantSiteID))
	if err != nil {
		d.loggerFor(ctx).Warn().Err(err).Msg("session_token_lookup_failed")
		return
	}
	if ok && token != "" {
		req["sessionToken"] = token
	}
}

func (d *Dispatcher) storeSession(ctx context.Context, snap Snapshot, body Response) {
	if d.Sessions == nil {
		return
	}
	token := body.String("sessionToken")
	if token == "" {
		return
	}
	if err := d.Sessions.Set(ctx, SessionKey(snap.MerchantID, snap.MerchantSiteID), token); err != nil {
		d.loggerFor(ctx).Warn().Err(err).Msg("session_token_store_failed")
	}
}

func (d *Dispatcher) url(snap Snapshot, op string) string {
	if d.BaseURL != "" {
		return endpoint.Join(d.BaseURL, op)
	}
	return endpoint.URL(snap.Environment, op)
}

func (d *Dispatcher) tracer() trace.Tracer {
	if d.Tracer != nil {
		return d.Tracer
	}
	return otel.Tracer("github.com/noah-isme/nuvei-client/gateway")
}

func (d *Dispatcher) loggerFor(ctx context.Context) *zerolog.Logger {
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger != nil && ctxLogger.GetLevel() != zerolog.Disabled {
		return ctxLogger
	}
	if d.Logger == nil {
		return &dispatcherNopLogger
	}
	return d.Logger
}
