// Package apperr is the error taxonomy shared by services, repositories and
// the HTTP layer.
//
// Every failure a caller is expected to act on wraps one of the sentinel
// kinds below, so callers branch with errors.Is regardless of how many
// layers of fmt.Errorf("...: %w") sit in between. Anything that does not
// wrap a kind is an internal error and is reported as such.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrAuthorization      = errors.New("not authorized")
	ErrInvalidState       = errors.New("invalid state")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Error pairs a kind with a message that is safe to show to API clients.
// Err holds the underlying cause, if any, and is never shown to clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: ErrAuthorization, Message: msg}
}

func InvalidState(msg string) error {
	return &Error{Kind: ErrInvalidState, Message: msg}
}

// Unavailable marks cause as a persistence outage (unreachable backend,
// missing table, closed pool).
func Unavailable(cause error) error {
	return &Error{Kind: ErrBackendUnavailable, Message: "service temporarily unavailable", Err: cause}
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message carried by err, or
// fallback when err carries none (internal errors).
func PublicMessage(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
