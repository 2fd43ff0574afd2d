// Package errors defines the pipeline's error kinds. Every failure is one
// of three kinds: a schema violation at load time, a configuration error
// before aggregation, or a sink write error after it. All are fatal; the
// run either produces the full output or fails outright.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a pipeline error.
type Kind int

const (
	// KindSchemaViolation marks input that does not match its declared
	// schema: a missing required column, a null in a non-nullable column
	// or an uncoercible value.
	KindSchemaViolation Kind = iota
	// KindConfiguration marks a bad run setup: a missing or malformed
	// config file, or a join key absent from its frame.
	KindConfiguration
	// KindSinkWrite marks a failure to clear or write the output
	// directory.
	KindSinkWrite
)

func (k Kind) String() string {
	switch k {
	case KindSchemaViolation:
		return "schema violation"
	case KindConfiguration:
		return "configuration error"
	case KindSinkWrite:
		return "sink write error"
	default:
		return "unknown"
	}
}

// Error is the pipeline's error type, carrying the failing operation and,
// where it applies, the column involved.
type Error struct {
	Kind    Kind
	Op      string
	Column  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s in %s", e.Kind, e.Op)
	if e.Column != "" {
		msg += fmt.Sprintf(" (column %s)", e.Column)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind, so callers can compare against a
// sentinel-style *Error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// NewSchemaViolation reports input that fails schema validation.
func NewSchemaViolation(op, column, message string) error {
	return &Error{Kind: KindSchemaViolation, Op: op, Column: column, Message: message}
}

// NewConfigurationError reports a bad run setup.
func NewConfigurationError(op, message string) error {
	return &Error{Kind: KindConfiguration, Op: op, Message: message}
}

// NewSinkWriteError reports a failed output write.
func NewSinkWriteError(op string, cause error) error {
	return &Error{Kind: KindSinkWrite, Op: op, Cause: cause}
}

func kindOf(err error, kind Kind) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsSchemaViolation reports whether err is a schema violation anywhere in
// its chain.
func IsSchemaViolation(err error) bool {
	return kindOf(err, KindSchemaViolation)
}

// IsConfigurationError reports whether err is a configuration error
// anywhere in its chain.
func IsConfigurationError(err error) bool {
	return kindOf(err, KindConfiguration)
}

// IsSinkWriteError reports whether err is a sink write error anywhere in
// its chain.
func IsSinkWriteError(err error) bool {
	return kindOf(err, KindSinkWrite)
}
