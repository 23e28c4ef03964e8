// Package apperr defines the sentinel errors shared across the store and API.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a project or category id does not
	// resolve to anything on disk.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on duplicate category names and rename
	// target collisions.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned when a required field is missing or
	// malformed. Callers wrap it with the field that failed.
	ErrValidation = errors.New("validation error")
)
