package adapter

import (
	"errors"
	"fmt"
)

// ErrEmptySource is returned when no document source was given.
var ErrEmptySource = errors.New("no result document source specified")

// FetchErrorKind classifies why a document could not be loaded.
type FetchErrorKind string

const (
	// FetchErrorNetwork covers transport failures and unreadable files.
	FetchErrorNetwork FetchErrorKind = "network"

	// FetchErrorStatus is a non-2xx HTTP response.
	FetchErrorStatus FetchErrorKind = "status"

	// FetchErrorTooLarge is a document larger than the configured maximum.
	FetchErrorTooLarge FetchErrorKind = "too-large"

	// FetchErrorDecode is a body that is not a valid Result Document.
	FetchErrorDecode FetchErrorKind = "decode"
)

// FetchError describes a failed document fetch.
type FetchError struct {
	Kind   FetchErrorKind
	Source string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load %s (%s): %v", e.Source, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// fetchErrorKind extracts the kind from err, or "" when err is not a FetchError.
func fetchErrorKind(err error) FetchErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
