// Package serrors defines the semantic error kinds the directory reports to
// its callers. A Kind is a sentinel; an *Error pairs a Kind with an optional
// message and cause so that both can be matched with errors.Is and errors.As.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category created with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind with the given name.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrInvalidInput means the caller omitted or malformed a required field.
	ErrInvalidInput = NewKind("INVALID_INPUT")
	// ErrNotFound means no record matches the request.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrConflict means the request would break a uniqueness rule.
	ErrConflict = NewKind("CONFLICT")
	// ErrUnavailable means the underlying store failed or could not be reached.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrInternal is used for anything that does not carry a kind.
	ErrInternal = NewKind("INTERNAL")
)

// Error is a semantic error. Its string form is "<msg>: <cause>", falling back
// to whichever of the two is set and finally to the kind name.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs an error of kind k that wraps err and carries a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly constructs an error that carries only its kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches target against the kind first and then the wrapped cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As extracts either the kind or a value from the wrapped cause.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the kind of the error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to the error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause, or nil.
func (e *Error) Cause() error { return e.err }

// KindOf returns the first Kind found in err's chain. Errors without a kind
// are reported as ErrInternal; a nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return nil
	}

	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return ErrInternal
}
