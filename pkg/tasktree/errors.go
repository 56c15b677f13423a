package tasktree

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

var (
	// ErrDuplicateID means a batch listed the same task id twice.
	ErrDuplicateID = errors.New("duplicate task id")
	// ErrNotFound is returned for ids or values that cannot be resolved.
	ErrNotFound = errors.New("not found")
	// ErrOutOfRange is returned for row indices outside [0, RowCount()).
	ErrOutOfRange = errors.New("row index out of range")
	// ErrStaleRow is returned when a row from a previous batch is used.
	ErrStaleRow = errors.New("row belongs to a previous batch")
)

// IngestError wraps a record that could not be ingested with its position
// in the batch.
type IngestError struct {
	Position int
	ID       model.TaskID
	Cause    error
}

func (e *IngestError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("ingest record %d: %v", e.Position, e.Cause)
	}
	return fmt.Sprintf("ingest record %d (%s): %v", e.Position, e.ID, e.Cause)
}

func (e *IngestError) Unwrap() error {
	return e.Cause
}
