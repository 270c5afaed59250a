// Package errors defines error types for the scaffold.
//
// This package provides structured error types that wrap the failure
// scenarios of the tool pipeline, the client sessions, and the process
// supervisor. All error types support error unwrapping and can be checked
// using errors.Is, errors.As, and errors.AsType.
package errors
