// Package apperr defines the application's error taxonomy.
//
// Every business failure falls into one of four kinds, each mapping to one
// fixed HTTP status code. Services return these errors; controllers hand
// them to response.FromError which writes the right status and message.
// Anything that is not an *apperr.Error surfaces as a 500 without leaking
// internals to the client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business failure.
type Kind int

const (
	// KindBadRequest covers validation and business-rule violations:
	// duplicate email, empty cart, insufficient stock, non-pending order.
	KindBadRequest Kind = iota + 1
	// KindUnauthorized covers missing, invalid or expired credentials.
	KindUnauthorized
	// KindForbidden covers authenticated callers lacking a capability.
	KindForbidden
	// KindNotFound covers absent resources, including resources the caller
	// does not own (ownership is deliberately not distinguishable).
	KindNotFound
)

// Error is a classified business error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional cause, logged but never sent to the client
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// BadRequest builds a KindBadRequest error.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized builds a KindUnauthorized error. An empty detail gets the
// standard credential message.
func Unauthorized(detail string) *Error {
	if detail == "" {
		detail = "Could not validate credentials"
	}
	return &Error{Kind: KindUnauthorized, Message: detail}
}

// Forbidden builds a KindForbidden error.
func Forbidden(detail string) *Error {
	if detail == "" {
		detail = "Forbidden"
	}
	return &Error{Kind: KindForbidden, Message: detail}
}

// NotFound builds a KindNotFound error for a named resource.
func NotFound(resource string, id any) *Error {
	msg := resource + " not found"
	if id != nil {
		msg = fmt.Sprintf("%s not found with id: %v", resource, id)
	}
	return &Error{Kind: KindNotFound, Message: msg}
}

// Wrap attaches a cause to e and returns e.
func (e *Error) Wrap(cause error) *Error {
	e.Err = cause
	return e
}

// Status returns the HTTP status code for err. Unclassified errors map
// to 500.
func Status(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to surface to the caller.
func ClientMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Internal Server Error"
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
