// Package errs defines the Core's machine-readable error taxonomy.
//
// Every error the Core returns to a caller carries one of these Kinds so the
// HTTP layer can map it to a status code without inspecting error strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error classification.
type Kind string

const (
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindInvalidState       Kind = "invalid_state"
	KindInvalidInput       Kind = "invalid_input"
	KindInsufficientCredit Kind = "insufficient_credits"
	KindProviderError      Kind = "provider_error"
	KindParseError         Kind = "parse_error"
	KindConflict           Kind = "conflict"
	KindInternal           Kind = "internal"
)

// Error is the Core's error envelope: a Kind plus a human-readable detail
// and an optional wrapped cause.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no underlying cause.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap builds an *Error around an underlying cause.
func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to KindInternal when err
// does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
