package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFileFormat   = errors.New("invalid file format")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrImportNotFound      = errors.New("import not found")
	ErrTooManyErrors       = errors.New("too many errors in spreadsheet")
	ErrQueueFull           = errors.New("worker queue is full")
)

// Structural failures. All of them match ErrInvalidFileFormat with errors.Is.
var (
	ErrNoWorksheet  = fmt.Errorf("%w: workbook must contain at least one worksheet", ErrInvalidFileFormat)
	ErrEmptyFile    = fmt.Errorf("%w: spreadsheet appears to be empty", ErrInvalidFileFormat)
	ErrHeaderOnly   = fmt.Errorf("%w: spreadsheet contains a header row but no data rows", ErrInvalidFileFormat)
	ErrNoValidRows  = fmt.Errorf("%w: no valid data could be parsed from the spreadsheet", ErrInvalidFileFormat)
	ErrTooManyRows  = fmt.Errorf("%w: spreadsheet exceeds the maximum number of rows", ErrInvalidFileFormat)
	ErrFileTooLarge = fmt.Errorf("%w: file exceeds the maximum allowed size", ErrInvalidFileFormat)
)

// RowError is a recoverable failure scoped to a single data row.
type RowError struct {
	Row    int
	Field  string
	Value  interface{}
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func NewRowError(row int, field, reason string) RowError {
	return RowError{Row: row, Field: field, Reason: reason}
}

// PersistenceError wraps a store failure together with the operation that failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %s", e.Op, e.Err.Error())
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) error {
	return PersistenceError{Op: op, Err: err}
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

// IsRetryable reports whether err carries a RetryableError anywhere in its chain.
func IsRetryable(err error) bool {
	var re RetryableError
	return errors.As(err, &re)
}
