package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoUpdate is returned by partial updates when no field was set.
var ErrNoUpdate = errors.New("no fields to update")
