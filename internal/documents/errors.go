package documents

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates the request failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
