package storage

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrNotFound     = errors.New("record not found")

	// ErrUnavailable marks failures to reach the database at all, as opposed
	// to the database rejecting the operation.
	ErrUnavailable = errors.New("storage unavailable")
)
