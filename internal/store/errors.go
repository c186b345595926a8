package store

import (
	"errors"
	"fmt"
)

// Common store errors. Callers match these with errors.Is.
var (
	// ErrStorageUnavailable is returned when the backing database cannot be
	// opened, initialized, or accessed.
	ErrStorageUnavailable = errors.New("material storage unavailable")

	// ErrQuotaExceeded is returned when the backing storage has no room for
	// a new material.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrMaterialNotFound is returned by Get when no material with the
	// requested id exists.
	ErrMaterialNotFound = errors.New("material not found")
)

// storeErr wraps a low-level database error under one of the sentinel
// errors above, keeping the original error in the chain for logging.
func storeErr(sentinel error, op string, err error) error {
	return fmt.Errorf("%w: %s: %v", sentinel, op, err)
}
