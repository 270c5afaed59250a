package errors

import (
	"errors"
	"fmt"
	"time"
)

// ScaffoldError is the base interface for all scaffold errors.
type ScaffoldError interface {
	error
	IsScaffoldError() bool
}

// Compile-time verification that all error types implement ScaffoldError.
var (
	_ ScaffoldError = (*TypeMismatchError)(nil)
	_ ScaffoldError = (*ToolExecutionError)(nil)
	_ ScaffoldError = (*StartupTimeoutError)(nil)
	_ ScaffoldError = (*TransportError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrSessionClosed indicates the session has been closed and cannot be reused.
	ErrSessionClosed = errors.New("session closed")

	// ErrDuplicateTool indicates a tool name was registered twice.
	ErrDuplicateTool = errors.New("duplicate tool name")

	// ErrUnknownDestination indicates a logging destination type is not recognized.
	ErrUnknownDestination = errors.New("unknown logging destination type")

	// ErrNoListParameter indicates a parallel-capable tool declares no list
	// parameter to fan out over.
	ErrNoListParameter = errors.New("parallel tool has no list parameter")

	// ErrUnknownTransport indicates the transport name is not recognized.
	ErrUnknownTransport = errors.New("unknown transport")
)

// Kind identifies the failure category carried in a wire-level error result.
type Kind string

const (
	// KindTypeMismatch is an argument coercion failure.
	KindTypeMismatch Kind = "type_mismatch"
	// KindToolExecution is a failure raised by the tool body.
	KindToolExecution Kind = "tool_execution"
	// KindTransport is a connection-level failure during a session call.
	KindTransport Kind = "transport"
)

// KindOf classifies an error into its wire-level kind.
func KindOf(err error) Kind {
	var tm *TypeMismatchError
	if errors.As(err, &tm) {
		return KindTypeMismatch
	}

	var tr *TransportError
	if errors.As(err, &tr) {
		return KindTransport
	}

	return KindToolExecution
}

// TypeMismatchError indicates an argument could not be coerced into the
// type its tool parameter declares. The tool body is never invoked when
// this error is produced.
type TypeMismatchError struct {
	Param    string
	Expected string
	Received any
	Err      error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter %q: cannot convert %v (%T) to %s", e.Param, e.Received, e.Received, e.Expected)
}

func (e *TypeMismatchError) Unwrap() error {
	return e.Err
}

// IsScaffoldError implements ScaffoldError.
func (e *TypeMismatchError) IsScaffoldError() bool { return true }

// ToolExecutionError indicates the tool body failed, either by returning an
// error or by panicking.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// IsScaffoldError implements ScaffoldError.
func (e *ToolExecutionError) IsScaffoldError() bool { return true }

// StartupTimeoutError indicates a supervised server process never became
// connectable within the readiness window.
type StartupTimeoutError struct {
	Addr    string
	Timeout time.Duration
}

func (e *StartupTimeoutError) Error() string {
	return fmt.Sprintf("server at %s did not accept connections within %s", e.Addr, e.Timeout)
}

// IsScaffoldError implements ScaffoldError.
func (e *StartupTimeoutError) IsScaffoldError() bool { return true }

// TransportError indicates the underlying transport failed during a session
// operation. Sessions convert this into an error-shaped tool result rather
// than surfacing it to callers as a raw failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsScaffoldError implements ScaffoldError.
func (e *TransportError) IsScaffoldError() bool { return true }
