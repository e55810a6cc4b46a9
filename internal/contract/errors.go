package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the stores and the engine.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate content")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrQueueFull         = errors.New("analysis queue is full")
)

// InputError means the file content could not be read or decoded. It is fatal
// for the file and moves it to FAILED.
type InputError struct {
	Op  string
	Err error
}

func (e *InputError) Error() string { return fmt.Sprintf("input error during %s: %v", e.Op, e.Err) }
func (e *InputError) Unwrap() error { return e.Err }

// ExternalServiceError means the model was unavailable, timed out or answered
// with something unusable. It is always recovered locally.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s service error: %v", e.Service, e.Err)
}
func (e *ExternalServiceError) Unwrap() error { return e.Err }

// ValidationError means a metric was missing or out of range after merging.
// It is defaulted silently.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid metric %s: %s", e.Field, e.Reason)
}

// PersistenceError means a store write or read failed. It is fatal for the file.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}
func (e *PersistenceError) Unwrap() error { return e.Err }

// IsFatal reports whether err may move a file to FAILED.
func IsFatal(err error) bool {
	var inputErr *InputError
	var persistErr *PersistenceError
	return errors.As(err, &inputErr) || errors.As(err, &persistErr)
}
