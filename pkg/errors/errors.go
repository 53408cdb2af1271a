package errors

import (
	"errors"
	"fmt"
)

// Domain error types for the orchestration core

var (
	// ErrConfiguration indicates an unresolvable provider/role or missing credential.
	// Always fatal, surfaced before any provider call is attempted.
	ErrConfiguration = errors.New("configuration error")

	// ErrDataUnavailable indicates a cache miss in offline mode or exhausted
	// live-fetch retries. Recoverable by the calling stage.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrRecursionLimit indicates the graph exceeded its global stage re-entry
	// ceiling. Always fatal; signals a modeling bug, not a transient condition.
	ErrRecursionLimit = errors.New("recursion limit exceeded")

	// ErrOrchestration wraps any stage failure not otherwise classified.
	ErrOrchestration = errors.New("orchestration error")
)

// General-purpose sentinels

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrExternal indicates an upstream API returned an error
	ErrExternal = errors.New("external service error")
)

// StageError carries the pipeline stage at which a run failed.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with the stage at which it occurred
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
