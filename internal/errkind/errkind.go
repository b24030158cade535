// Package errkind defines the machine-readable error kinds surfaced by the
// ingestion pipeline to its orchestrator. Each failed stage reports exactly
// one kind so the scheduler can decide whether a retry is worthwhile without
// parsing error strings.
package errkind

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	// SourceUnavailable covers connectivity, auth, and missing-file failures.
	// Retryable: the source may come back.
	SourceUnavailable Kind = "source_unavailable"

	// SourceFormat covers payloads that cannot be parsed into the expected
	// shape (wrong delimiter, malformed document). Not retryable without a
	// fixed input.
	SourceFormat Kind = "source_format"

	// SchemaMismatch means a required column is entirely absent from the
	// input. Not retryable.
	SchemaMismatch Kind = "schema_mismatch"

	// Write covers warehouse write failures. Retryable; the materializer
	// guarantees the previous table version survives a failed load.
	Write Kind = "write_error"
)

// Error pairs a Kind with the underlying cause. It satisfies errors.Unwrap so
// callers can still reach driver errors with errors.Is/As.
type Error struct {
	Kind Kind
	Op   string // short operation description, e.g. "file: open data.csv"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a kind and operation label.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf is New with a formatted cause and no underlying error to unwrap to.
func Newf(kind Kind, op, format string, a ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, a...)}
}

// KindOf extracts the Kind from err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Retryable reports whether the orchestrator may reasonably retry a failure
// of the given kind without changing the input.
func Retryable(k Kind) bool {
	return k == SourceUnavailable || k == Write
}
