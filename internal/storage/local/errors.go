package local

import "errors"

var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned for IDs that could escape the store directory
	ErrInvalidID = errors.New("invalid record id")
)
