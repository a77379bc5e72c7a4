package receipt

import (
	"errors"
	"fmt"
)

// ErrEmptyItems is wrapped by the ValidationError returned for a record with no items.
var ErrEmptyItems = errors.New("items must be a non-empty list")

// ValidationError reports a record the renderer refuses to lay out.
// Index is the offending item position, or -1 for record-level fields.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid item at index %d: %s %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RenderError wraps a failure while drawing or encoding the document.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("receipt: %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

func fieldError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Index: -1, Reason: reason}
}

func itemError(idx int, field, reason string) *ValidationError {
	return &ValidationError{Field: field, Index: idx, Reason: reason}
}
