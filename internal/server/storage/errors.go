package storage

import "errors"

// Common storage errors
var (
	// ErrRecordNotFound indicates that a record with the given id does not exist
	ErrRecordNotFound = errors.New("record not found")

	// ErrStaleRecord indicates that a conditional write was refused because the stored
	// record was modified after the caller's checkpoint
	ErrStaleRecord = errors.New("record modified after checkpoint")

	// ErrUnknownTable indicates that the table is not part of the store schema
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnsupportedDriver indicates that the configured database driver is not supported
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
