package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and services return these,
// usually wrapped, and the HTTP layer maps them to status codes:
// - ErrNotFound: the session or resource does not exist
// - ErrConflict: a resource with the same identity already exists
// - ErrInvalidState: the resource cannot take the requested operation
// - ErrUnavailable: a dependency such as the feed broker is unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
