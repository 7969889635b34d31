// Package policyerr defines the fatal error taxonomy shared by every
// component of the comparison engine. Loaders and the orchestrator return
// these instead of ad-hoc errors so the CLI can map a failure to the correct
// exit code and status label without string matching.
package policyerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the fatal error classes from the comparison
// engine's error taxonomy.
type Kind string

const (
	// KindInvalidConfiguration covers mutually exclusive flags, malformed
	// --fail-on/--ignore keys, and unknown matching strategies.
	KindInvalidConfiguration Kind = "invalidConfiguration"

	// KindIO covers unreadable files and missing required directories.
	KindIO Kind = "ioFailure"

	// KindInvalidDocument covers a parser that cannot reconstruct a policy
	// from a root document.
	KindInvalidDocument Kind = "invalidDocument"

	// KindCancelled covers an observed cancellation signal.
	KindCancelled Kind = "cancelled"
)

// Error is a typed, wrapped fatal error. It is never used for "driftDetected"
// outcomes, which are not errors but ordinary classified results (see the
// outcome package).
type Error struct {
	kind   Kind
	detail string
	cause  error
}

// New builds an Error of the given kind.
func New(kind Kind, detail string) *Error {
	return &Error{kind: kind, detail: detail}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{kind: kind, detail: detail, cause: cause}
}

// Kind returns the error's taxonomy classification.
func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.detail)
}

// Unwrap allows errors.Is/errors.As to see through to the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether err carries the given Kind, looking through wrapping.
func Is(err error, kind Kind) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.kind == kind
}

// ExitCode returns the fixed exit code associated with a fatal error kind,
// per spec §6/§7: any fatal error from the engine maps to exit code 3.
func ExitCode(_ Kind) int {
	return 3
}
