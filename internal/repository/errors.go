package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist or a guarded
	// update matched no row.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("repository: duplicate")
)
