package scaffold

import (
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// ScaffoldError is implemented by all errors originating in this module.
type ScaffoldError = errors.ScaffoldError

// Kind classifies a normalized failure.
type Kind = errors.Kind

// Failure kinds carried in error results.
const (
	KindTypeMismatch  = errors.KindTypeMismatch
	KindToolExecution = errors.KindToolExecution
	KindTransport     = errors.KindTransport
)

// Typed errors surfaced by the pipeline, sessions, and supervisor.
type (
	TypeMismatchError   = errors.TypeMismatchError
	ToolExecutionError  = errors.ToolExecutionError
	StartupTimeoutError = errors.StartupTimeoutError
	TransportError      = errors.TransportError
)

// Sentinel errors for commonly checked conditions.
var (
	ErrSessionClosed      = errors.ErrSessionClosed
	ErrDuplicateTool      = errors.ErrDuplicateTool
	ErrUnknownDestination = errors.ErrUnknownDestination
	ErrNoListParameter    = errors.ErrNoListParameter
	ErrUnknownTransport   = errors.ErrUnknownTransport
)

// KindOf reports the failure kind of err, or the empty string when err does
// not originate in this module.
func KindOf(err error) Kind {
	return errors.KindOf(err)
}
