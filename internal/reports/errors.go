package reports

import "errors"

var (
	// ErrNotFound indicates an entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates access is not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotReady indicates the interview has not produced a report yet.
	ErrNotReady = errors.New("report not ready")

	// ErrUnsupportedFormat indicates an artifact format this service
	// cannot render.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
