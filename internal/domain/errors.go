package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrFetchFailed indicates a network or parse failure in a collaborator
	ErrFetchFailed = errors.New("fetch failed")

	// ErrLocationNotFound indicates the geocoder had no answer for an address
	ErrLocationNotFound = errors.New("no location information found")

	// ErrStoreUnavailable indicates the durable store could not be used
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrCorruptEntry indicates a persisted value could not be decoded
	ErrCorruptEntry = errors.New("corrupt store entry")

	// ErrNoRatingsSource indicates ratings are disabled
	ErrNoRatingsSource = errors.New("no ratings source selected")

	// ErrInvalidSelection indicates an index or id outside the current choices
	ErrInvalidSelection = errors.New("invalid selection")
)

// FetchError is returned by collaborators when a remote fetch fails.
// It always matches ErrFetchFailed with errors.Is.
type FetchError struct {
	Source string // Collaborator name (e.g., "North America")
	Op     string // What was being fetched (e.g., "listings")
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Source, e.Op)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Source, e.Op, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// NewFetchError wraps err as a FetchError.
func NewFetchError(source, op string, err error) error {
	return &FetchError{Source: source, Op: op, Err: err}
}
