package sync

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks
var (
	// ErrConflict indicates that a pushed record was modified on the server after the client's checkpoint
	ErrConflict = errors.New("sync conflict")

	// ErrValidation indicates a malformed push batch
	ErrValidation = errors.New("validation failed")

	// ErrStorage indicates that the record store failed
	ErrStorage = errors.New("storage failure")
)

// ConflictError identifies the record that made the push fail
type ConflictError struct {
	Table string
	ID    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s/%s: record modified after last_pulled_at", e.Table, e.ID)
}

// Is reports whether target is ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ValidationError describes why a push batch was rejected before any write
type ValidationError struct {
	Table  string
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	msg := "invalid push"
	if e.Table != "" {
		msg += " table=" + e.Table
	}
	if e.ID != "" {
		msg += " id=" + e.ID
	}
	if e.Field != "" {
		msg += " field=" + e.Field
	}
	return msg + ": " + e.Reason
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a record store failure
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
