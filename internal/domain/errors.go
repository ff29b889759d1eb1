package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrAlreadyInLibrary indicates an add hit an existing library record
	ErrAlreadyInLibrary = errors.New("book is already in the library")

	// ErrBookNotFound indicates the library record does not exist
	ErrBookNotFound = errors.New("library book not found")

	// ErrProviderOffline indicates the metadata provider is unreachable
	ErrProviderOffline = errors.New("metadata provider is unreachable")
)

// StatusError carries an HTTP status and the server's message for
// non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Code)
}

// IsConflict reports whether an add mutation failed because the book is
// already in the library. Conflicts are success-shaped: the end state the
// user wanted already holds.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAlreadyInLibrary) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code == 409 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already in library") || strings.Contains(msg, "conflict")
}

// IsNotFound reports whether a remove mutation failed because the record
// was already gone.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBookNotFound) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code == 404 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
