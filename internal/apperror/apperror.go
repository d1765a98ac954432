package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an operational error category
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeDuplicateEmail     Code = "duplicate_email"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeNoToken            Code = "no_token"
	CodeInvalidToken       Code = "invalid_token"
	CodeStaleToken         Code = "stale_token"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeInvalidResetToken  Code = "invalid_or_expired_reset_token"
	CodeUnknown            Code = "server_error"
)

// Error is an operational (anticipated, user-facing) error. Anything that
// is not an *Error is treated as a programming defect and never leaks its
// detail to clients in production.
type Error struct {
	Code    Code
	Status  int
	Message string
	Err     error // optional underlying cause, for logs only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an operational error with the status implied by its code
func New(code Code, message string) *Error {
	return &Error{Code: code, Status: statusFor(code), Message: message}
}

// Wrap attaches an underlying cause to an operational error
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Status: statusFor(code), Message: message, Err: err}
}

func statusFor(code Code) int {
	switch code {
	case CodeValidation, CodeDuplicateEmail, CodeInvalidResetToken:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeNoToken, CodeInvalidToken, CodeStaleToken:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an operational *Error from an error chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
