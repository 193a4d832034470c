// Package docerr defines the tagged error taxonomy of the extraction engine.
// Every failure is terminal for the current invocation: heuristic parsing is
// deterministic, so nothing is retried internally and partial trees are never
// returned.
package docerr

import (
	"errors"
	"fmt"
)

// Kind tags an error with its place in the taxonomy.
type Kind int

const (
	// NotFound means the input path does not exist.
	NotFound Kind = iota + 1
	// NotImplemented means the input extension is not a supported format.
	NotImplemented
	// Parse means a format-specific structural failure, such as a corrupt
	// word-processor container.
	Parse
	// MissingField means mandatory metadata could not be recovered.
	MissingField
	// SchemaViolation means the assembled tree failed the output contract.
	SchemaViolation
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case NotImplemented:
		return "not_implemented"
	case Parse:
		return "parse"
	case MissingField:
		return "missing_field"
	case SchemaViolation:
		return "schema_violation"
	default:
		return "unknown"
	}
}

// Error carries the kind, the offending input path and a human-readable
// diagnostic.
type Error struct {
	Kind Kind
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Kind.String() + ": " + e.Msg
	if e.Path != "" {
		s += " (" + e.Path + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged error with a formatted diagnostic.
func New(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error.
func Wrap(kind Kind, path, msg string, err error) *Error {
	return &Error{Kind: kind, Path: path, Msg: msg, Err: err}
}

// KindOf returns the taxonomy kind of err, or zero when err is untagged.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
