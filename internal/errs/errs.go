// Package errs provides the structured error taxonomy shared by every
// orchestration component. Errors carry a stable Kind so callers (the
// engine's recover-vs-abort policy, the HTTP envelope) can branch on
// category without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Kind enumerates the error categories named by the orchestration design.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not-found"
	KindAlreadyExists     Kind = "already-exists"
	KindInvalidState      Kind = "invalid-state"
	KindLockFailed        Kind = "lock-failed"
	KindBackendUnavailable Kind = "backend-unavailable"
	KindCancellation      Kind = "cancellation"
	KindBudgetExhausted   Kind = "budget-exhausted"
	KindBuildError        Kind = "build-error"
	KindExtractionError   Kind = "extraction-error"
	KindDependencyError   Kind = "dependency-error"
	KindInternal          Kind = "internal"
)

// Error is a structured failure that preserves a Kind and an optional cause,
// so errors.Is/As keep working across wrapped layers.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New constructs an Error of the given kind with a plain message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind around an existing error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Errorf formats a message and wraps it in an Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// do errors.Is(err, errs.New(errs.KindNotFound, "")) style kind checks via
// KindOf instead; Is here only supports identity/kind-wildcard matching used
// by KindOf.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the Kind from err, defaulting to KindInternal when err is
// not a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if err == nil {
		return ""
	}
	return KindInternal
}
