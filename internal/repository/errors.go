package repository

import "errors"

var (
	// ErrNotFound means a lookup returned no row.
	ErrNotFound = errors.New("not found")
)
