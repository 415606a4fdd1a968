// Package gateway builds, validates and dispatches gateway requests and
// normalises the replies into a single completion contract.
package gateway

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Request is an outgoing payload keyed by gateway field name.
type Request map[string]any

// Lookup implements checksum.Source.
func (r Request) Lookup(field string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[field]
	return v, ok
}

// Clone returns a shallow copy of r.
func (r Request) Clone() Request {
	out := make(Request, len(r)+5)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns field as a string, or "" when it is absent or not a string.
func (r Request) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Response is a decoded gateway reply.
type Response map[string]any

// Lookup implements checksum.Source.
func (r Response) Lookup(field string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[field]
	return v, ok
}

// String returns field as a string, or "" when it is absent or not a string.
func (r Response) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Reason returns the gateway's textual reason, if any.
func (r Response) Reason() string {
	return r.String("reason")
}

// ErrCode returns the numeric errCode of the reply. The gateway sends it as a
// JSON number or a numeric string; ok is false when it is missing or neither.
func (r Response) ErrCode() (code int64, ok bool) {
	raw, present := r["errCode"]
	if !present {
		return 0, false
	}
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
