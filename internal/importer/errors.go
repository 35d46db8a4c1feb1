package importer

import (
	"errors"
	"fmt"
)

// Kind classifies why an import failed.
type Kind string

const (
	KindNotRecipe        Kind = "not_recipe"
	KindPaywalled        Kind = "paywalled"
	KindFetchFailed      Kind = "fetch_failed"
	KindGenerationFailed Kind = "generation_failed"
	KindInvalidInput     Kind = "invalid_input"
)

// Error is an import failure with a user-facing kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind carried by err, or "" when err is not an import
// failure.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}
