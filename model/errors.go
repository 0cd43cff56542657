package model

import "errors"

var (
	// ErrNotFound is returned when a table or transaction does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTypeMismatch is returned when a document or column value type disagrees
	// with the configured type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrOutOfRange is returned for an invalid block slot.
	ErrOutOfRange = errors.New("slot out of range")

	// ErrDataIntegrity is returned when an index references a record that no
	// chain layer materializes. It signals corruption and is never retried.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrNotSupported is returned for predicates or operators the algebra does
	// not implement.
	ErrNotSupported = errors.New("not supported")

	// ErrInvalidState is returned when operating on a completed or rolled back
	// transaction.
	ErrInvalidState = errors.New("invalid transaction state")

	// ErrClosed is returned when an operation is attempted on a closed database.
	ErrClosed = errors.New("database closed")

	// ErrMemoryLimitExceeded is returned when a commit would exceed the
	// configured memory limit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrInvalidSchema is returned for malformed table schemas.
	ErrInvalidSchema = errors.New("invalid schema")
)
