package gateway

import (
	"context"
	"sync"
)

// Outcome is the normalised result of one call: exactly one of Response and
// Err is set. Request is the payload as built, before any transport.
type Outcome struct {
	Request  Request
	Response Response
	Err      error
}

// Future completes exactly once with the Outcome of a call.
type Future struct {
	once    sync.Once
	done    chan struct{}
	outcome Outcome
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns an already completed Future.
func Resolved(req Request, resp Response, err error) *Future {
	f := newFuture()
	f.resolve(Outcome{Request: req, Response: resp, Err: err})
	return f
}

// resolve completes the future; later calls are ignored and report false.
func (f *Future) resolve(o Outcome) bool {
	resolved := false
	f.once.Do(func() {
		if o.Err != nil {
			o.Response = nil
		}
		f.outcome = o
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the outcome is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the call completes or ctx ends. Ending ctx does not
// cancel a request already handed to the transport.
func (f *Future) Wait(ctx context.Context) (Response, error) {
	select {
	case <-f.done:
		return f.outcome.Response, f.outcome.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Outcome returns the outcome without blocking; ok is false while pending.
func (f *Future) Outcome() (o Outcome, ok bool) {
	select {
	case <-f.done:
		return f.outcome, true
	default:
		return Outcome{}, false
	}
}

// Then runs cb on its own goroutine once the call completes, in the
// (err, result, request) form.
func (f *Future) Then(cb func(err error, result Response, req Request)) {
	if cb == nil {
		return
	}
	go func() {
		<-f.done
		cb(f.outcome.Err, f.outcome.Response, f.outcome.Request)
	}()
}
