// Package errors provides standardized domain errors with codes for the Quiver API.
//
// Usage:
//
//	// In services - return typed errors
//	if nameTaken {
//	    return errors.Conflict("A ski spec with this name already exists")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    respond.Error(w, r, err)
//	    return
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeConflict:
//	        ...
//	    case errors.CodeAuthentication:
//	        ...
//	    }
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

// Code represents a machine-readable error code. Code values are part of
// the API contract: they appear verbatim in the "code" field of error
// response bodies.
type Code string

// Error codes used throughout the application.
const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeInvalidJSON        Code = "INVALID_JSON"
	CodeAuthentication     Code = "AUTHENTICATION_ERROR"
	CodeRegistrationFailed Code = "REGISTRATION_FAILED"
	CodeInvalidSurfaceArea Code = "INVALID_SURFACE_AREA"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeDatabase           Code = "DATABASE_ERROR"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeInvalidJSON, CodeRegistrationFailed:
		return http.StatusBadRequest
	case CodeAuthentication:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidSurfaceArea:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether the error's own message is safe to send to
// clients. 5xx messages are replaced with a generic body at the response
// boundary; everything else is authored to be user-facing.
func (c Code) Public() bool {
	return c.HTTPStatus() < http.StatusInternalServerError
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
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

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
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

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrInvalidJSON        = &Error{Code: CodeInvalidJSON, Message: "invalid JSON"}
	ErrAuthentication     = &Error{Code: CodeAuthentication, Message: "authentication required"}
	ErrRegistrationFailed = &Error{Code: CodeRegistrationFailed, Message: "registration failed"}
	ErrInvalidSurfaceArea = &Error{Code: CodeInvalidSurfaceArea, Message: "invalid surface area"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrRateLimited        = &Error{Code: CodeRateLimited, Message: "rate limited"}
	ErrDatabase           = &Error{Code: CodeDatabase, Message: "database error"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with field-level details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// InvalidJSON creates an error for request bodies that cannot be parsed
// as JSON. Distinct from Validation: malformed transport, not bad shape.
func InvalidJSON(msg string) *Error {
	return &Error{Code: CodeInvalidJSON, Message: msg}
}

// Authentication creates an authentication error.
func Authentication(msg string) *Error {
	return &Error{Code: CodeAuthentication, Message: msg}
}

// RegistrationFailed creates a generic registration error. The message
// must not reveal whether an email address is already registered.
func RegistrationFailed(msg string) *Error {
	return &Error{Code: CodeRegistrationFailed, Message: msg}
}

// InvalidSurfaceArea creates a business-logic error for a non-positive
// surface area, carrying the offending values as details.
func InvalidSurfaceArea(weight, surfaceArea float64) *Error {
	return &Error{
		Code:    CodeInvalidSurfaceArea,
		Message: "Surface area must be positive to compute relative weight",
		Details: map[string]float64{"weight": weight, "surface_area": surfaceArea},
	}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// RateLimited creates a rate limit error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Database creates a database error wrapping the storage failure. The
// message is generic; the cause is for server-side logs only.
func Database(err error) *Error {
	return &Error{Code: CodeDatabase, Message: "Database operation failed", cause: err}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
