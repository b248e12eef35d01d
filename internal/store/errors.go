package store

import (
	"fmt"
)

// Field names the input that failed validation.
type Field string

const (
	FieldID          Field = "id"
	FieldAmount      Field = "amount"
	FieldCategory    Field = "category"
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldRecord      Field = "record"
)

// ValidationError reports malformed or out-of-range input. It is always
// returned before any mutation, so callers can retry with corrected input.
type ValidationError struct {
	Row   int // 1-based data row of an import, 0 for direct calls
	Field Field
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IOError reports that an import source or export destination could not be
// opened, read or written. It never indicates a data problem.
type IOError struct {
	Op   string // "import" or "export"
	Path string // empty for streams
	Err  error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
