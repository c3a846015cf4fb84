// Package apperrors defines the typed error taxonomy the service exposes to
// callers. Services translate infrastructure sentinels into these codes; the
// HTTP layer translates codes into status lines without inspecting messages.
package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and operational tooling.
type Code string

const (
	// CodeValidation marks malformed or missing input. Never retried; carries
	// field-level detail for the caller.
	CodeValidation Code = "validation_error"
	// CodeUpstream marks a failure of an external collaborator reached over
	// the network (the extraction oracle).
	CodeUpstream Code = "upstream_error"
	// CodeStorage marks a persistence collaborator failure. Surfaced, not
	// retried in-core.
	CodeStorage Code = "storage_error"
	// CodeNotFound marks a lookup of a nonexistent record.
	CodeNotFound Code = "not_found"
	// CodePartialFailure marks a classification that was computed but not
	// durably recorded. The affected record is stuck at PROCESSING and needs
	// operator attention; this must never be conflated with CodeStorage.
	CodePartialFailure Code = "partial_failure"

	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeConflict     Code = "conflict"
	CodeBadRequest   Code = "bad_request"
	CodeInternal     Code = "internal_error"
)

// FieldError reports a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the concrete typed error carried across layer boundaries.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an error with a code and human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithFields attaches field-level validation detail.
func (e *Error) WithFields(fields ...FieldError) *Error {
	e.Fields = append(e.Fields, fields...)
	return e
}

// Validation builds a CodeValidation error from a list of field errors.
func Validation(fields ...FieldError) *Error {
	return (&Error{Code: CodeValidation, Message: "invalid input"}).WithFields(fields...)
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for untyped errors.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
