// Package apperr defines the machine-readable error taxonomy used across
// the service. Every error surfaced by a handler carries a kind and a code
// so callers never see a generic failure.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies how an error propagates: caller bug, benign race,
// transient dependency failure or terminal delivery failure.
type Kind int

const (
	Validation Kind = iota + 1
	NotFound
	Conflict
	TransientStore
	TransientDelivery
	PermanentDelivery
)

// Codes returned in HTTP error bodies.
const (
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeNotFound             = "NOT_FOUND"
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s, %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error without a wrapped cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap builds an Error around a cause.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// CodeOf returns the code of err, falling back to STORE_UNAVAILABLE for
// unclassified errors so nothing internal leaks into responses.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStoreUnavailable
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
