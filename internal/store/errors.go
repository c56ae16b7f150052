package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a task id is not in the store.
var ErrNotFound = errors.New("task not found")

// ErrEmptyTitle is returned by Create and BulkImport for blank titles.
var ErrEmptyTitle = errors.New("title cannot be empty")

// ErrNoSnapshot is returned by Backend.Load when no snapshot exists yet.
var ErrNoSnapshot = errors.New("no snapshot")

// UnavailableError wraps backend failures (network, auth, I/O). Operations
// that hit it should be treated as failed; the store does not fall back to
// another backend.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
