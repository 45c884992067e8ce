package storage

import "errors"

// Common storage errors
var (
	// ErrInvalidEntityType indicates that entity type is not supported
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrStorageUnavailable indicates that the database did not answer
	ErrStorageUnavailable = errors.New("storage unavailable")
)
