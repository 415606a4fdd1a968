package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/nuvei-client/internal/schema"
)

// ValidationErrCode is the errCode reported for requests rejected locally.
const ValidationErrCode = 4001

var (
	// ErrUnsupportedOperation is returned for operations the gateway no longer serves.
	ErrUnsupportedOperation = errors.New("gateway: unsupported operation")
	// ErrUnknownOperation is returned for names missing from the operation table.
	ErrUnknownOperation = errors.New("gateway: unknown operation")
	// ErrUnsupportedLocale is returned by Settings.SetErrLocale.
	ErrUnsupportedLocale = errors.New("gateway: unsupported error locale")
)

// ValidationError reports a request that failed its schema. It is never sent.
type ValidationError struct {
	ErrCode    int
	Reason     string
	Violations []schema.Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Reason
}

// MarshalJSON renders the error the way the gateway renders its own.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ErrCode int    `json:"errCode"`
		Reason  string `json:"reason"`
	}{ErrCode: e.ErrCode, Reason: e.Reason})
}

// TransportError wraps a failure to obtain any HTTP reply.
type TransportError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("gateway: %s: %v", e.Operation, e.Err)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// APIError is a reply with a non-200 status or a non-zero errCode. Body is
// the decoded reply, passed through unmodified; it is nil when the reply was
// not JSON.
type APIError struct {
	Operation  string
	StatusCode int
	ErrCode    int64
	Reason     string
	Body       Response
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason != "" {
		return fmt.Sprintf("gateway: %s: status %d errCode %d: %s", e.Operation, e.StatusCode, e.ErrCode, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: status %d: %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway: %s: status %d errCode %d", e.Operation, e.StatusCode, e.ErrCode)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsValidationError checks whether err is a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAPIError checks whether err is an APIError.
func IsAPIError(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

// IsTransportError checks whether err is a TransportError.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}
