// Package domainerrors provides coded errors for domain and workflow logic.
//
// Codes classify what went wrong so callers can branch on the class of
// failure rather than on error strings. Infrastructure layers return
// sentinel errors (pkg/platform/sentinel) and services translate them into
// coded errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeBadRequest    Code = "bad_request"
	CodeValidation    Code = "validation"
	CodeUnauthorized  Code = "unauthorized"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeInternal      Code = "internal_error"

	// Workflow failure classes for the issuance pipeline.
	CodeConfiguration Code = "configuration"
	CodeIdentity      Code = "identity"
	CodeTransport     Code = "transport"
	CodeAPI           Code = "api"
	CodeResponseParse Code = "response_parse"
	CodeNotification  Code = "notification"
)

// Error is a coded domain error. It optionally wraps an underlying cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with a human-readable message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, keeping the
// cause reachable through errors.Is/As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// Detail returns the message of a coded error, or err.Error() for plain
// errors. Used when persisting human-readable failure details.
func Detail(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		if domainErr.cause != nil {
			return fmt.Sprintf("%s: %v", domainErr.Message, domainErr.cause)
		}
		return domainErr.Message
	}
	return err.Error()
}
