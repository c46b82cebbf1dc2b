package model

import "errors"

var (
	// ErrNotFound is returned when an entity does not exist or is not
	// visible to the requesting user. Ownership and existence are never
	// distinguished to callers.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned on any login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSourceURL is returned when an upload request carries a URL
	// no filename can be derived from.
	ErrInvalidSourceURL = errors.New("invalid source url")
)
