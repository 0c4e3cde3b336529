package estimate

import (
	"errors"
	"fmt"
)

// Kind classifies why an estimate could not be produced.
type Kind string

const (
	// KindEmptyHistory means the aggregator was called without production
	// history. Callers must check for history before invoking it.
	KindEmptyHistory Kind = "empty_history"
	// KindInvalidInput means a numeric field was NaN or infinite, or the
	// estimate arithmetic overflowed.
	KindInvalidInput Kind = "invalid_input"
)

// Error is the typed failure returned by the aggregator.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("estimate: %s: %s", e.Kind, e.Msg)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err if it (or any error in its chain) is an
// *Error, and "" otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsEmptyHistory reports whether err is a precondition violation caused by
// an empty production history.
func IsEmptyHistory(err error) bool {
	return KindOf(err) == KindEmptyHistory
}

// IsInvalidInput reports whether err was caused by a malformed numeric field.
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}
