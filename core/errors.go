package core

import (
	"errors"
	"fmt"
)

// ErrResourceExhausted marks failures of the resource-exhaustion class, such
// as an unavailable memory store. Unlike ordinary tool failures these are not
// surfaced to the model for recovery; they terminate the session.
var ErrResourceExhausted = errors.New("resource exhausted")

// GatewayError reports that the model service was unreachable or returned a
// response that could not be parsed. The loop treats it as fatal for the
// session; retry policy, if any, belongs to the gateway adapter.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("model gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// UnknownToolError reports a tool name outside the dispatcher's registry.
// This signals a contract mismatch between the declared tool set and the
// dispatcher, not a recoverable model mistake, so it aborts the session.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// InvalidArgumentsError reports tool arguments that failed schema validation.
// It is recovered locally: the dispatcher converts it into a tool-role error
// payload so the model can re-issue a corrected call.
type InvalidArgumentsError struct {
	Tool   string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Reason)
}

// ToolExecutionError reports a handler's downstream failure. Recovered
// locally as a tool-role error result unless it wraps ErrResourceExhausted,
// in which case it propagates and terminates the session.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
