package conversation

import (
	"errors"
	"fmt"
)

// Kind classifies hard failures so adapters can map them to transport statuses.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal"
)

// Error is a hard failure of an engine operation.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("conversation: %s (%s)", e.Kind, e.Reason)
	}
	return fmt.Sprintf("conversation: %s (%s): %v", e.Kind, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsUnauthorized reports whether err means the session must be renewed.
func IsUnauthorized(err error) bool {
	return err != nil && KindOf(err) == KindUnauthorized
}

// ErrorTag marks a recoverable outcome carried on a normal reply.
type ErrorTag string

const (
	TagInvalidFormat ErrorTag = "invalid_format"
	TagNotFound      ErrorTag = "not_found"
	TagInvalidEmail  ErrorTag = "invalid_email"
	TagLostContext   ErrorTag = "lost_context"
	TagNotEligible   ErrorTag = "not_eligible"
	TagNotLost       ErrorTag = "not_lost"
)
