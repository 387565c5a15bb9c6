// Package errors defines the sentinel errors and HTTP-aware error type shared
// across the knowledge base. Per-item parse failures (ErrUnlearnable,
// ErrEncoding) are recovered locally and counted by batch flows; index and
// query construction failures propagate to the caller unmodified.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnlearnable means no usable description or examples could be
	// extracted from any available help source.
	ErrUnlearnable = errors.New("command is unlearnable")
	// ErrEncoding means the input text is not valid UTF-8.
	ErrEncoding = errors.New("malformed text encoding")
	// ErrIndexIO means index persistence failed; the previous snapshot
	// remains valid and servable.
	ErrIndexIO = errors.New("index storage failure")
	// ErrQueryBuild means escaping and query construction disagree. This is
	// always a defect, never an empty result.
	ErrQueryBuild = errors.New("query construction failure")
	// ErrNotFound means the requested (name, lang) pair is absent. A normal
	// outcome for callers that probe optimistically.
	ErrNotFound = errors.New("command not found")

	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// AppError pairs a sentinel with a human-readable message and the HTTP status
// the API layer should respond with.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}
