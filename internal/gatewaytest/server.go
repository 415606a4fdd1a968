// Package gatewaytest runs an in-process fake of the payment gateway. It
// re-derives every checksum with the production operation table, so a test
// that passes against it exercises the real wire format.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nuvei-client/internal/checksum"
	"github.com/noah-isme/nuvei-client/internal/gateway"
	"github.com/noah-isme/nuvei-client/internal/obs"
)

// Gateway error codes used by the fake.
const (
	ErrCodeInvalidChecksum = 1001
	ErrCodeInvalidMerchant = 1004
	ErrCodeSessionExpired  = 1069
	ErrCodeUnknownMethod   = 1140
)

// Merchant is the account the fake accepts.
type Merchant struct {
	MerchantID     string
	MerchantSiteID string
	SecretKey      string
}

// Reply overrides the fake's answer for one operation.
type Reply struct {
	Status int
	Body   map[string]any
}

// Server is a running fake gateway. Use URL as the client's base URL.
type Server struct {
	*httptest.Server

	merchant Merchant
	logger   zerolog.Logger

	mu        sync.Mutex
	algorithm checksum.Algorithm
	strict    bool
	replies   map[string]Reply
	calls     map[string]int
	requests  map[string][]gateway.Request
	sessions  map[string]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs every request the fake serves.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithAlgorithm sets the digest the fake expects; sha256 by default.
func WithAlgorithm(alg checksum.Algorithm) Option {
	return func(s *Server) { s.algorithm = alg }
}

// WithStrictSessions rejects session-bound operations whose sessionToken
// was not issued by this fake.
func WithStrictSessions() Option {
	return func(s *Server) { s.strict = true }
}

// New starts a fake gateway for merchant.
func New(merchant Merchant, opts ...Option) *Server {
	s := &Server{
		merchant:  merchant,
		logger:    zerolog.Nop(),
		algorithm: checksum.SHA256,
		replies:   make(map[string]Reply),
		calls:     make(map[string]int),
		requests:  make(map[string][]gateway.Request),
		sessions:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(obs.TracingMiddleware)
	r.Use(obs.RequestLogger{Logger: s.logger}.Middleware)
	r.Use(middleware.Recoverer)
	r.Post("/ppp/api/v1/{operation}.do", s.handle)
	return r
}

// SetAlgorithm changes the digest the fake expects.
func (s *Server) SetAlgorithm(alg checksum.Algorithm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.algorithm = alg
}

// Reply makes the fake answer op with status and body once its checks pass.
func (s *Server) Reply(op string, status int, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[op] = Reply{Status: status, Body: body}
}

// Calls returns how many requests for op reached the fake.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Requests returns the decoded payloads received for op, oldest first.
func (s *Server) Requests(op string) []gateway.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.Request(nil), s.requests[op]...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "operation")

	var req gateway.Request
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "ERROR", "errCode": 1000, "reason": "Malformed JSON"})
		return
	}

	s.mu.Lock()
	s.calls[name]++
	s.requests[name] = append(s.requests[name], req)
	alg := s.algorithm
	reply, hasReply := s.replies[name]
	s.mu.Unlock()

	op, ok := gateway.LookupOperation(name)
	if !ok || op.Name != name || op.Unsupported {
		writeJSON(w, http.StatusOK, failure(req, ErrCodeUnknownMethod, "Unknown method"))
		return
	}
	if _, leaked := req["secretKey"]; leaked {
		writeJSON(w, http.StatusOK, failure(req, ErrCodeInvalidChecksum, "Secret key must not be sent"))
		return
	}
	if op.Stamp != gateway.StampNone {
		if req.String("merchantId") != s.merchant.MerchantID || req.String("merchantSiteId") != s.merchant.MerchantSiteID {
			writeJSON(w, http.StatusOK, failure(req, ErrCodeInvalidMerchant, "Invalid merchant site"))
			return
		}
	}
	if op.Checksum != nil && !s.checksumValid(req, op, alg) {
		writeJSON(w, http.StatusOK, failure(req, ErrCodeInvalidChecksum, "Invalid checksum"))
		return
	}
	if op.AttachSession && !s.sessionValid(req.String("sessionToken")) {
		writeJSON(w, http.StatusOK, failure(req, ErrCodeSessionExpired, "Invalid session token"))
		return
	}

	if hasReply {
		writeJSON(w, reply.Status, reply.Body)
		return
	}
	body := map[string]any{
		"status":            "SUCCESS",
		"errCode":           0,
		"reason":            "",
		"merchantId":        req["merchantId"],
		"merchantSiteId":    req["merchantSiteId"],
		"clientRequestId":   req["clientRequestId"],
		"internalRequestId": uuid.New().ID(),
		"version":           "1.0",
	}
	if op.IssuesSession {
		token := uuid.NewString()
		s.mu.Lock()
		s.sessions[token] = struct{}{}
		s.mu.Unlock()
		body["sessionToken"] = token
	}
	for _, echo := range []string{"userTokenId", "userPaymentOptionId", "orderId", "clientUniqueId"} {
		if v, ok := req[echo]; ok {
			body[echo] = v
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) checksumValid(req gateway.Request, op gateway.Operation, alg checksum.Algorithm) bool {
	want, err := checksum.Compute(req, checksum.Values{"secretKey": s.merchant.SecretKey}, op.Checksum, alg)
	if err != nil {
		return false
	}
	return req.String("checksum") == want
}

func (s *Server) sessionValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.strict {
		return true
	}
	_, ok := s.sessions[token]
	return ok
}

func failure(req gateway.Request, code int, reason string) map[string]any {
	return map[string]any{
		"status":          "ERROR",
		"errCode":         code,
		"reason":          reason,
		"clientRequestId": req["clientRequestId"],
		"version":         "1.0",
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
