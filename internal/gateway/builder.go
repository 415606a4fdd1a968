package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/nuvei-client/internal/checksum"
)

// TimestampLayout is the gateway's YYYYMMDDHHmmss timestamp.
const TimestampLayout = "20060102150405"

// Builder stamps identity and timing fields onto caller data and attaches the
// checksum. The zero value is ready to use.
type Builder struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to a time-ordered UUID.
	NewID func() string
	// Location for timeStamp; defaults to UTC.
	Location *time.Location
}

// NewRequestID returns a version 1 UUID, falling back to a random one when
// the node clock or interface id is unavailable.
func NewRequestID() string {
	if id, err := uuid.NewUUID(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Build returns a fresh request for op. The caller's map is never modified;
// a caller-supplied secretKey is dropped and stamped fields override caller
// values. Signed requests are returned in their decoded wire form so the
// checksum covers exactly the values that are sent.
func (b Builder) Build(op Operation, snap Snapshot, data Request) (Request, error) {
	req := data.Clone()
	delete(req, "secretKey")

	switch op.Stamp {
	case StampFull:
		b.stampIdentity(req, snap)
		req["timeStamp"] = b.now().In(b.location()).Format(TimestampLayout)
	case StampIdentity:
		b.stampIdentity(req, snap)
	case StampNone:
	default:
		return nil, fmt.Errorf("gateway: %s: unknown stamp mode %d", op.Name, op.Stamp)
	}

	if op.Checksum == nil {
		return req, nil
	}
	wire, err := wireForm(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s: %w", op.Name, err)
	}
	sum, err := checksum.Compute(wire, snap, op.Checksum, snap.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s: checksum: %w", op.Name, err)
	}
	wire["checksum"] = sum
	return wire, nil
}

// wireForm round-trips req through JSON, keeping numbers as json.Number.
func wireForm(req Request) (Request, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	wire := Request{}
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return wire, nil
}

func (b Builder) stampIdentity(req Request, snap Snapshot) {
	req["merchantId"] = snap.MerchantID
	req["merchantSiteId"] = snap.MerchantSiteID
	req["clientRequestId"] = b.newID()
}

func (b Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b Builder) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return NewRequestID()
}

func (b Builder) location() *time.Location {
	if b.Location != nil {
		return b.Location
	}
	return time.UTC
}
