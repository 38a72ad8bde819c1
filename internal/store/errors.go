package store

import "fmt"

// StorageError represents a failure to persist or remove a file on disk.
type StorageError struct {
	Path string // Relative path involved in the failed operation
	Err  error  // Underlying error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error for %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
