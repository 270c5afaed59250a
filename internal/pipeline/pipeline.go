// Package pipeline wraps tool functions with the fixed stage order the
// scaffold applies to every invocation.
//
// Stages compose by nesting, outermost to innermost:
//
//	plain tools:    exception(logging(convert(f)))
//	parallel tools: exception(logging(parallelize(convert(f))))
//
// Each stage transforms the callable while the tool's metadata (name,
// description, parameter schema) rides alongside in the Invocation struct.
// Metadata is propagated explicitly rather than recovered by introspection,
// so the registry always exposes the tool under its declared name no matter
// how many stages wrap it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/logging"
)

// DefaultMaxWorkers bounds concurrent sub-tasks in a parallel invocation.
// The fan-out width comes from the caller's own argument list, so an
// explicit cap keeps a large batch from creating unbounded goroutines.
const DefaultMaxWorkers = 8

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	// TypeString declares a string parameter.
	TypeString ParamType = "string"
	// TypeInt declares an integer parameter.
	TypeInt ParamType = "integer"
	// TypeFloat declares a floating-point parameter.
	TypeFloat ParamType = "number"
	// TypeBool declares a boolean parameter.
	TypeBool ParamType = "boolean"
	// TypeStringList declares a list-of-strings parameter. For
	// parallel-capable tools this is the fan-out parameter; the handler
	// receives one element per sub-invocation.
	TypeStringList ParamType = "string_list"
	// TypeAny declares a parameter passed through without coercion.
	TypeAny ParamType = "any"
)

// Param declares one tool parameter.
type Param struct {
	Name     string
	Type     ParamType
	Required bool
}

// ToolFunc is the normalized tool implementation signature. Arguments
// arrive as the coerced mapping produced by the converter stage.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// Tool describes a callable exposed for remote invocation. Identity is the
// declared name, which must be unique across a registry.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Parallel    bool
	Handler     ToolFunc
}

// listParam returns the first list-typed parameter, the fan-out axis for
// parallel-capable tools.
func (t Tool) listParam() (Param, bool) {
	for _, p := range t.Params {
		if p.Type == TypeStringList {
			return p, true
		}
	}

	return Param{}, false
}

// Result is the outcome of one pipeline invocation: either a success value
// or a normalized error carrying the invocation's correlation id. This is
// the single shape every caller-visible failure is translated into.
type Result struct {
	Value         any
	IsError       bool
	ErrorKind     errors.Kind
	ErrorMessage  string
	CorrelationID string
}

// Deps carries the cross-cutting collaborators the stages need.
type Deps struct {
	// Unified receives the invocation start/end records. Nil disables them.
	Unified *logging.UnifiedLogger
	// Log receives stage diagnostics. Nil disables them.
	Log *slog.Logger
	// MaxWorkers caps concurrent sub-tasks in the parallelizer stage.
	// Zero means DefaultMaxWorkers.
	MaxWorkers int
}

// Invocation is a tool wrapped in its full stage chain. The declared
// metadata stays observable regardless of wrapping depth.
type Invocation struct {
	tool   Tool
	invoke func(ctx context.Context, args map[string]any) Result
}

// Name returns the tool's declared name.
func (inv *Invocation) Name() string { return inv.tool.Name }

// Description returns the tool's declared description.
func (inv *Invocation) Description() string { return inv.tool.Description }

// Params returns the tool's declared parameters.
func (inv *Invocation) Params() []Param { return inv.tool.Params }

// Parallel reports whether the tool is parallel-capable.
func (inv *Invocation) Parallel() bool { return inv.tool.Parallel }

// Invoke runs the full stage chain for one call.
func (inv *Invocation) Invoke(ctx context.Context, args map[string]any) Result {
	return inv.invoke(ctx, args)
}

// Chain wraps the tool in the fixed stage order for its capability class.
func Chain(t Tool, deps Deps) (*Invocation, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("tool has no name")
	}

	if t.Handler == nil {
		return nil, fmt.Errorf("tool %q has no handler", t.Name)
	}

	var inner ToolFunc

	if t.Parallel {
		fanOut, ok := t.listParam()
		if !ok {
			return nil, fmt.Errorf("tool %q: %w", t.Name, errors.ErrNoListParameter)
		}

		// The converter runs per sub-invocation, where the fan-out
		// parameter carries a single element rather than the full list.
		inner = Parallelize(fanOut, TypeConvert(perItemParams(t.Params, fanOut), t.Handler), deps.MaxWorkers)
	} else {
		inner = TypeConvert(t.Params, t.Handler)
	}

	inner = ToolLog(t.Name, inner, deps.Unified, deps.Log)

	return &Invocation{
		tool:   t,
		invoke: ExceptionHandle(t.Name, inner),
	}, nil
}

// perItemParams rewrites the fan-out parameter to its element type for the
// per-sub-invocation converter.
func perItemParams(params []Param, fanOut Param) []Param {
	out := make([]Param, len(params))

	for i, p := range params {
		if p.Name == fanOut.Name {
			p.Type = TypeString
		}

		out[i] = p
	}

	return out
}
