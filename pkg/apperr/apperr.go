// Package apperr classifies domain errors so transport code can map them
// without knowing every feature's sentinels.
package apperr

import "errors"

// Kind is the class of a domain error
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindUnauthorized Kind = "FORBIDDEN"
	KindValidation   Kind = "BAD_REQUEST"
	KindConflict     Kind = "CONFLICT"
)

// Error is a classified domain error
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NotFound creates an error for a referenced entity that does not exist
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// Unauthorized creates an error for a caller lacking the required role
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

// Validation creates an error for malformed input
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Conflict creates an error for a state transition that is not allowed
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are store or programmer errors and report ok=false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is classified with kind k
func Is(err error, k Kind) bool {
	kind, ok := KindOf(err)
	return ok && kind == k
}
