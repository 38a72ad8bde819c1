package queue

import (
	"errors"
	"fmt"

	"github.com/mhadifilms/reverie/internal/fetch"
	"github.com/mhadifilms/reverie/internal/resolve"
	"github.com/mhadifilms/reverie/internal/store"
)

// MaxRetriesError is the terminal error surfaced when every attempt of a
// download pipeline failed. It wraps the classified error of the last attempt.
type MaxRetriesError struct {
	SourceID string
	Attempts int
	Err      error
}

func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("download of %s failed after %d attempts: %v", e.SourceID, e.Attempts, e.Err)
}

func (e *MaxRetriesError) Unwrap() error {
	return e.Err
}

// The classify helpers make sure every stage failure carries its stage's typed
// error, even when a collaborator returns a bare error.

func classifyResolve(sourceID string, err error) error {
	var re *resolve.ResolutionError
	if errors.As(err, &re) {
		return err
	}

	return &resolve.ResolutionError{SourceID: sourceID, Reason: "resolve stage failed", Err: err}
}

func classifyFetch(url string, err error) error {
	var ne *fetch.NetworkError
	if errors.As(err, &ne) {
		return err
	}

	return &fetch.NetworkError{URL: url, Err: err}
}

func classifyStore(path string, err error) error {
	var se *store.StorageError
	if errors.As(err, &se) {
		return err
	}

	return &store.StorageError{Path: path, Err: err}
}
