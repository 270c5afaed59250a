package scaffold

import (
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/pipeline"
)

// Tool declares a named, typed callable for registration with a server.
type Tool = pipeline.Tool

// Param declares one tool parameter.
type Param = pipeline.Param

// ParamType identifies a declared parameter type.
type ParamType = pipeline.ParamType

// ToolFunc is the tool body signature. Arguments arrive already coerced to
// the declared parameter types.
type ToolFunc = pipeline.ToolFunc

// Result is the normalized outcome of one pipeline invocation.
type Result = pipeline.Result

// ItemResult is one entry in a parallel tool's aggregate result.
type ItemResult = pipeline.ItemResult

// Declared parameter types.
const (
	TypeString     = pipeline.TypeString
	TypeInt        = pipeline.TypeInt
	TypeFloat      = pipeline.TypeFloat
	TypeBool       = pipeline.TypeBool
	TypeStringList = pipeline.TypeStringList
	TypeAny        = pipeline.TypeAny
)

// DefaultMaxWorkers caps concurrent sub-tasks of a parallel tool unless
// overridden in configuration.
const DefaultMaxWorkers = pipeline.DefaultMaxWorkers

// ToolOption customizes a tool built by NewTool.
type ToolOption func(*Tool)

// WithParams declares the tool's parameters.
func WithParams(params ...Param) ToolOption {
	return func(t *Tool) {
		t.Params = params
	}
}

// WithParallel marks the tool parallel-capable. Parallel tools must declare
// exactly one string list parameter, which becomes the fan-out axis.
func WithParallel() ToolOption {
	return func(t *Tool) {
		t.Parallel = true
	}
}

// NewTool builds a tool declaration.
func NewTool(name, description string, handler ToolFunc, opts ...ToolOption) Tool {
	t := Tool{
		Name:        name,
		Description: description,
		Handler:     handler,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// StringParam declares a string parameter.
func StringParam(name string, required bool) Param {
	return Param{Name: name, Type: TypeString, Required: required}
}

// IntParam declares an integer parameter.
func IntParam(name string, required bool) Param {
	return Param{Name: name, Type: TypeInt, Required: required}
}

// FloatParam declares a floating point parameter.
func FloatParam(name string, required bool) Param {
	return Param{Name: name, Type: TypeFloat, Required: required}
}

// BoolParam declares a boolean parameter.
func BoolParam(name string, required bool) Param {
	return Param{Name: name, Type: TypeBool, Required: required}
}

// StringListParam declares a list-of-strings parameter.
func StringListParam(name string, required bool) Param {
	return Param{Name: name, Type: TypeStringList, Required: required}
}

// AnyParam declares a parameter passed through without coercion.
func AnyParam(name string, required bool) Param {
	return Param{Name: name, Type: TypeAny, Required: required}
}
