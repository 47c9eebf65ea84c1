package model

import (
	"fmt"

	"github.com/mcpbridge/mcpbridge/pkg/types"
)

// The error types below form the failure taxonomy of the registry core.
// Registry-level validation and not-found conditions are surfaced
// synchronously to the caller; connection and discovery failures are
// recorded on the provider record; execution failures are recorded
// per-execution and never abort sibling executions.

// NotFoundError indicates an unknown tool or provider identifier.
type NotFoundError struct {
	Kind string // "tool" or "provider"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ValidationError indicates a malformed entity or input payload.
// Field carries the offending field path when known.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Reason)
}

// DisabledError indicates an operation attempted on a disabled entity.
type DisabledError struct {
	Kind string // "tool" or "provider"
	ID   string
}

func (e *DisabledError) Error() string {
	return fmt.Sprintf("%s %s is disabled", e.Kind, e.ID)
}

// ConnectionError indicates a reachability probe or discovery transport failure.
type ConnectionError struct {
	ProviderID string
	Timeout    bool
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("connection to provider %s timed out: %v", e.ProviderID, e.Err)
	}
	return fmt.Sprintf("connection to provider %s failed: %v", e.ProviderID, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UnsupportedOperationError indicates that a connection type other than
// request/response HTTP was used for an operation that requires it.
type UnsupportedOperationError struct {
	Connection types.ConnectionType
	Op         string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %s is not supported for connection type %s", e.Op, e.Connection)
}

// ExecutionError indicates that a tool invocation failed, at the provider
// or internally. Message carries the provider's error message when available.
type ExecutionError struct {
	ToolID  string
	Message string
	Timeout bool
	Err     error
}

func (e *ExecutionError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("execution of tool %s timed out", e.ToolID)
	case e.Message != "":
		return fmt.Sprintf("execution of tool %s failed: %s", e.ToolID, e.Message)
	default:
		return fmt.Sprintf("execution of tool %s failed: %v", e.ToolID, e.Err)
	}
}

func (e *ExecutionError) Unwrap() error { return e.Err }
