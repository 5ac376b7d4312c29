// Package faults defines the error taxonomy surfaced to studio operators.
//
// Errors produced at the Gemini boundary carry a Kind so callers can branch on
// them with errors.As instead of matching message text. Classify turns any
// error into a Report with a title, explanation and remediation hint; errors
// without a Kind fall back to message inspection.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

// Kind discriminates failure conditions.
type Kind string

const (
	KindAPIKey         Kind = "API_KEY"
	KindQuota          Kind = "QUOTA"
	KindNetwork        Kind = "NETWORK"
	KindInvalidInput   Kind = "INVALID_INPUT"
	KindGeneration     Kind = "GENERATION"
	KindEntityNotFound Kind = "ENTITY_NOT_FOUND"
	KindBatchFailed    Kind = "BATCH_FAILED" // no variation succeeded; Msg is shown as is
	KindUnknown        Kind = "UNKNOWN"
)

// entityNotFoundText is the message the API uses when the selected project or
// model is unavailable for the key.
const entityNotFoundText = "Requested entity was not found"

// Error is a classified failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err. A nil err still yields an error carrying msg.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Invalidf returns a KindInvalidInput error.
func Invalidf(format string, args ...interface{}) *Error {
	return New(KindInvalidInput, fmt.Sprintf(format, args...))
}

// KindOf returns the outermost Kind in err's chain, or "" if none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// messageOf returns the Msg of the outermost fault in err's chain.
func messageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Msg
	}
	return ""
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsEntityNotFound reports whether err must abort a variation batch.
func IsEntityNotFound(err error) bool {
	if err == nil {
		return false
	}
	if Is(err, KindEntityNotFound) {
		return true
	}
	return strings.Contains(err.Error(), entityNotFoundText)
}
