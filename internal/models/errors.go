package models

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed or missing input. It is raised before any process starts.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input %q: %s", e.Input, e.Reason)
}

// RegistrationError reports a failed repository-add or registry-login step.
type RegistrationError struct {
	Target   string
	ExitCode int
	Err      error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register %s: %v", e.Target, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// OperationError reports a chart operation that exited non-zero.
type OperationError struct {
	Operation Mode
	Release   string
	ExitCode  int
	Err       error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("helm %s of release %s failed with exit code %d: %v", e.Operation, e.Release, e.ExitCode, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failure to manage local resources such as the inline values file.
type ResourceError struct {
	Action string
	Err    error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Action, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// ExitCode maps a run error to the process exit status.
// Step failures keep the exit code of the failed process.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var opErr *OperationError
	if errors.As(err, &opErr) && opErr.ExitCode > 0 {
		return opErr.ExitCode
	}

	var regErr *RegistrationError
	if errors.As(err, &regErr) && regErr.ExitCode > 0 {
		return regErr.ExitCode
	}

	return 1
}
