// Package apperror defines the domain error taxonomy shared by every layer.
//
// Services return these errors; the HTTP layer maps them to status codes in
// one place (handler/response.go). Nothing below the handler layer knows
// about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is, which walks the wrap
// chain because AppError implements Unwrap.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("authentication required")
)

// AppError carries a sentinel plus a human-readable message and, for
// validation failures, the offending field.
type AppError struct {
	Err     error  // sentinel classifying the error
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a resource does not exist.
// HTTP handlers map this to 404.
func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

// ValidationFailed reports malformed or conflicting input on a named field.
// HTTP handlers map this to 400.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation — whether caught by an application
// pre-check or by the database constraint after a race, callers see the same
// error. HTTP handlers map this to 409.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden reports that an authenticated caller lacks the role or ownership
// required for the operation. HTTP handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized reports that the operation requires an authenticated actor.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
