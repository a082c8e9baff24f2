// Package veritaserr defines the typed error kinds the core raises (§7).
// Each kind wraps an underlying cause and exposes Kind() so callers can
// branch on category without string matching, the same wrap-with-flag
// idiom resilience.RetryableError uses for retryability.
package veritaserr

import (
	"errors"
	"fmt"
)

// Kind discriminates the error categories named in §7.
type Kind string

const (
	KindInput       Kind = "input"       // segments malformed: out of order, overlapping, empty
	KindConfig      Kind = "config"      // lexicon missing/invalid, fails fast at startup
	KindPersistence Kind = "persistence" // store write failed; current claim's transaction rolls back
)

// Error is a typed, wrapped error carrying a Kind.
type Error struct {
	kind Kind
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the error's category.
func (e *Error) Kind() Kind {
	return e.kind
}

// NewInputError wraps err as a malformed-input failure (§7: extractor fails
// the whole source, no partial claims persisted).
func NewInputError(err error) error {
	return &Error{kind: KindInput, err: err}
}

// NewConfigError wraps err as a fail-fast configuration failure.
func NewConfigError(err error) error {
	return &Error{kind: KindConfig, err: err}
}

// NewPersistenceError wraps err as a rolled-back persistence failure.
func NewPersistenceError(err error) error {
	return &Error{kind: KindPersistence, err: err}
}

// KindOf reports the Kind of err if it is (or wraps) a veritaserr.Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return "", false
}
