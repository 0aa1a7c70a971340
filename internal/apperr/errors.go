package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid is returned when the input fails domain validation (HTTP 400).
	ErrInvalid = errors.New("invalid input")
	// ErrUnauthorized is returned when the caller is not authenticated (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller's role does not permit the operation (HTTP 403).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates that the requested resource does not exist (HTTP 404).
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
	ErrConflict = errors.New("conflict")
)

// Error is a business error with a message that is safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

// Unwrap exposes the kind so errors.Is works against the sentinels.
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Invalid returns a validation error.
func Invalid(format string, args ...any) error { return newError(ErrInvalid, format, args...) }

// Forbidden returns an authorization error.
func Forbidden(format string, args ...any) error { return newError(ErrForbidden, format, args...) }

// NotFound returns a not-found error.
func NotFound(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

// Conflict returns a state conflict error.
func Conflict(format string, args ...any) error { return newError(ErrConflict, format, args...) }

// Message returns the caller-facing message of err, or fallback for unexpected errors.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	for _, kind := range []error{ErrInvalid, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return fallback
}

// Business reports whether err is an expected business error rather than a failure.
func Business(err error) bool {
	return errors.Is(err, ErrInvalid) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict)
}
