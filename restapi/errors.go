package restapi

import "errors"

var (
	// ErrInvalidArgument reports a malformed registration request.
	ErrInvalidArgument = errors.New("restapi: invalid argument")
	// ErrDuplicateExtension reports a second bind of one extension name on one application.
	ErrDuplicateExtension = errors.New("restapi: extension already initialized on this application")
	// ErrNotBound reports a lookup for an extension that was never bound to the application.
	ErrNotBound = errors.New("restapi: extension not initialized on this application")
	// ErrInvalidMountName reports an existing mount name that shares an allocator
	// prefix but has no numeric suffix.
	ErrInvalidMountName = errors.New("restapi: invalid mount name")
)
