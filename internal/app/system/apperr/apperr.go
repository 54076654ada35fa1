// Package apperr defines the typed failures stores and handlers exchange.
//
// Every error carries an HTTP status class and a client-safe message.
// Handlers translate these with httpjson.Error; anything that is not an
// *apperr.Error surfaces as a generic 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure with an HTTP status class and a client-safe message.
type Error struct {
	Status int
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// New builds an Error with an arbitrary status.
func New(status int, format string, args ...any) *Error {
	return &Error{Status: status, Msg: fmt.Sprintf(format, args...)}
}

// BadRequest covers malformed ids, failed body validation, and
// mismatched password confirmation.
func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

// Unauthorized covers missing/invalid/expired tokens and bad credentials.
func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

// NotFound covers absent entities and soft-deleted entities on default reads.
func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

// Conflict covers duplicate email on user creation.
func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, format, args...)
}

// Internal covers server faults such as a failed read-back after a write.
func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, format, args...)
}

// IsNotFound reports whether err is a typed 404. Stores use it to tell a
// client-facing miss apart from a failed read-back after a matched write,
// which is a server fault.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

// Status returns the HTTP status for err, or 500 for untyped errors.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Message returns the client-safe message for err. Untyped errors get a
// generic message so internal details never leak into responses.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}
