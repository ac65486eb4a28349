package db

import "errors"

// ErrNotFound is returned when no portfolio exists for the requested user,
// slug, or domain.
var ErrNotFound = errors.New("portfolio not found")
