package storage

import "errors"

// Common client storage errors
var (
	// ErrEntityNotFound indicates that no local record exists for the id
	ErrEntityNotFound = errors.New("entity not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
