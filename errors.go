package deltadb

import (
	"fmt"

	"github.com/hupe1980/deltadb/model"
)

var (
	// ErrNotFound is returned when a table does not exist.
	ErrNotFound = model.ErrNotFound

	// ErrTypeMismatch is returned when a table is requested with the wrong
	// document type or a column value has the wrong type.
	ErrTypeMismatch = model.ErrTypeMismatch

	// ErrOutOfRange is returned for an invalid block slot.
	ErrOutOfRange = model.ErrOutOfRange

	// ErrDataIntegrity is returned when an index references a record no
	// committed delta holds.
	ErrDataIntegrity = model.ErrDataIntegrity

	// ErrNotSupported is returned for predicates that cannot be resolved.
	ErrNotSupported = model.ErrNotSupported

	// ErrInvalidState is returned when a transaction handle is used after it
	// was completed or rolled back.
	ErrInvalidState = model.ErrInvalidState

	// ErrClosed is returned after Close.
	ErrClosed = model.ErrClosed

	// ErrMemoryLimitExceeded is returned by a commit that would exceed the
	// configured memory limit.
	ErrMemoryLimitExceeded = model.ErrMemoryLimitExceeded

	// ErrInvalidSchema is returned by Open for malformed table definitions.
	ErrInvalidSchema = model.ErrInvalidSchema
)

// TypeMismatchError indicates a table was requested with a document type
// other than the one it was defined with.
//
// It unwraps to ErrTypeMismatch.
type TypeMismatchError struct {
	Table string
	Want  string
	Got   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("table %q: type mismatch: defined with %s, requested as %s", e.Table, e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
