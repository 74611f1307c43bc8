package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies request failures so handlers can map them to HTTP statuses
// without inspecting message strings.
type Kind string

const (
	Validation    Kind = "VALIDATION"
	Conflict      Kind = "CONFLICT"
	AuthMissing   Kind = "AUTH_MISSING"
	AuthInvalid   Kind = "AUTH_INVALID"
	NotFound      Kind = "NOT_FOUND"
	Deny          Kind = "DENY"
	InvalidTarget Kind = "INVALID_TARGET"
	Internal      Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and public message to an underlying error. The
// underlying error is kept for logs but never shown to callers.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err; any unclassified error is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the caller-facing message for err. Internal errors get a
// generic message so store details never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func (k Kind) HTTPStatus() int {
	switch k {
	case Validation, InvalidTarget:
		return http.StatusBadRequest
	case AuthMissing, AuthInvalid:
		return http.StatusUnauthorized
	case Deny:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
