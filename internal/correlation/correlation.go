// Package correlation generates and scopes the correlation ids that tie
// together every log record of one logical operation.
//
// Two phases exist: process startup (one id set process-wide while the
// server assembles itself) and tool invocation (one fresh id per call,
// carried in the call's context so concurrent invocations cannot observe
// each other's id).
package correlation

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

const (
	startupPrefix = "startup_"
	callPrefix    = "call_"
)

// NewStartupID returns a fresh id for the process startup phase.
func NewStartupID() string {
	return startupPrefix + ulid.Make().String()
}

// NewCallID returns a fresh id for a single tool invocation.
func NewCallID() string {
	return callPrefix + ulid.Make().String()
}

type ctxKey struct{}

// WithID returns a context carrying the given correlation id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the correlation id carried by ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)

	return id, ok && id != ""
}

// processID is the process-wide default id for records emitted outside any
// invocation scope (the startup phase). Accessed atomically so concurrent
// log emission never observes a torn value.
var processID atomic.Pointer[string]

// SetProcessID installs the process-wide default correlation id.
func SetProcessID(id string) {
	processID.Store(&id)
}

// ClearProcessID removes the process-wide default correlation id.
func ClearProcessID() {
	processID.Store(nil)
}

// ProcessID returns the process-wide default correlation id, if set.
func ProcessID() (string, bool) {
	p := processID.Load()
	if p == nil || *p == "" {
		return "", false
	}

	return *p, true
}

// Active resolves the correlation id for a log record: the invocation-scoped
// id from ctx wins, falling back to the process-wide startup id.
func Active(ctx context.Context) string {
	if id, ok := FromContext(ctx); ok {
		return id
	}

	if id, ok := ProcessID(); ok {
		return id
	}

	return ""
}

// taggedError attaches a correlation id to an error so stages outside the
// invocation's context scope can still recover the id that was active when
// the failure occurred.
type taggedError struct {
	id  string
	err error
}

func (e *taggedError) Error() string {
	return e.err.Error()
}

func (e *taggedError) Unwrap() error {
	return e.err
}

// Tag attaches a correlation id to err. Tagging a nil error returns nil.
func Tag(err error, id string) error {
	if err == nil {
		return nil
	}

	return &taggedError{id: id, err: err}
}

// IDFromError returns the correlation id attached to err, if any.
func IDFromError(err error) (string, bool) {
	var tagged *taggedError
	if errors.As(err, &tagged) {
		return tagged.id, true
	}

	return "", false
}
