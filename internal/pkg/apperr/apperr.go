// Package apperr defines the error kinds services return and the HTTP boundary translates.
package apperr

import "errors"

// Kind classifies a domain error
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindForbidden           Kind = "FORBIDDEN"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindInvalidAmount       Kind = "INVALID_AMOUNT"
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindConflict            Kind = "CONFLICT"
	KindTooManyRequests     Kind = "RATE_LIMIT_EXCEEDED"
	KindInternal            Kind = "INTERNAL_ERROR"
)

// Error is a classified error. Sentinels are compared by identity with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New creates a classified sentinel error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first classified error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err.
// Unclassified errors never leak their text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "An unexpected error occurred"
}
