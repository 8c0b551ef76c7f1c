// Package errors provides coded domain errors shared by the loader, the report sections and the
// HTTP handlers.
//
// Sections return typed errors; the report builder keeps them per section so one failing
// chart never takes down the page:
//
//	if !ds.Has(model.FieldSpecies) {
//	    return domainerrors.MissingColumn("ESPECIE")
//	}
//
//	var derr *domainerrors.Error
//	if domainerrors.As(err, &derr) {
//	    w.WriteHeader(derr.HTTPStatus())
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeMissingColumn  Code = "MISSING_COLUMN"
	CodeJoinMismatch   Code = "JOIN_MISMATCH"
	CodeMalformedValue Code = "MALFORMED_VALUE"
	CodeNoData         Code = "NO_DATA"
	CodeUnavailable    Code = "UNAVAILABLE"
	CodeNotFound       Code = "NOT_FOUND"
	CodeValidation     Code = "VALIDATION"
	CodeInternal       Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeMissingColumn, CodeJoinMismatch, CodeMalformedValue, CodeNoData:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrMissingColumn  = &Error{Code: CodeMissingColumn, Message: "missing column"}
	ErrJoinMismatch   = &Error{Code: CodeJoinMismatch, Message: "join mismatch"}
	ErrMalformedValue = &Error{Code: CodeMalformedValue, Message: "malformed value"}
	ErrNoData         = &Error{Code: CodeNoData, Message: "no data"}
	ErrUnavailable    = &Error{Code: CodeUnavailable, Message: "source unavailable"}
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal       = &Error{Code: CodeInternal, Message: "internal error"}
)

// MissingColumn reports configured columns absent from the loaded table.
func MissingColumn(columns ...string) *Error {
	return &Error{
		Code:    CodeMissingColumn,
		Message: fmt.Sprintf("column not found in dataset: %v", columns),
		Details: map[string]any{"columns": columns},
	}
}

// JoinMismatch reports keys that found no counterpart on the other side of a join.
func JoinMismatch(unmatchedKeys, unmatchedEntities []string) *Error {
	return &Error{
		Code: CodeJoinMismatch,
		Message: fmt.Sprintf("%d aggregated keys and %d geographic entities were not matched",
			len(unmatchedKeys), len(unmatchedEntities)),
		Details: map[string]any{
			"unmatched_keys":     unmatchedKeys,
			"unmatched_entities": unmatchedEntities,
		},
	}
}

// MalformedValue reports a value that could not be coerced to its expected type.
func MalformedValue(field, value string) *Error {
	return &Error{
		Code:    CodeMalformedValue,
		Message: fmt.Sprintf("malformed %s value %q", field, value),
		Details: map[string]any{"field": field, "value": value},
	}
}

// NoData creates a no data error.
func NoData(msg string) *Error {
	return &Error{Code: CodeNoData, Message: msg}
}

// Unavailable creates a source unavailable error.
func Unavailable(msg string) *Error {
	return &Error{Code: CodeUnavailable, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// From converts any error to a domain error. Domain errors pass through unchanged,
// anything else becomes INTERNAL wrapping the original.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var derr *Error
	if errors.As(err, &derr) {
		return derr
	}
	return ErrInternal.WithCause(err)
}

// CodeOf returns the code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if derr := From(err); derr != nil {
		return derr.Code
	}
	return ""
}
