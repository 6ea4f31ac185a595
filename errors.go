package flakescan

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational failure that should lead to exit
// code 2: invalid configuration, missing target path, inability to set up
// the session. Test outcomes never produce a RuntimeError.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// UnreliableTestsError signals that the analysis completed and found flaky
// or failing tests (exit code 1). The analysis itself succeeded.
type UnreliableTestsError struct {
	Flaky   int
	Failing int
}

func (e *UnreliableTestsError) Error() string {
	return fmt.Sprintf("unreliable tests found: %d flaky, %d failing", e.Flaky, e.Failing)
}

// NewUnreliableTestsError creates a new UnreliableTestsError
func NewUnreliableTestsError(flaky, failing int) *UnreliableTestsError {
	return &UnreliableTestsError{Flaky: flaky, Failing: failing}
}

// IsUnreliableTestsError checks if the error is or wraps an UnreliableTestsError
func IsUnreliableTestsError(err error) bool {
	var unreliableErr *UnreliableTestsError
	return err != nil && errors.As(err, &unreliableErr)
}
