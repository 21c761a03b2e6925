package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no profile exists for the requested id.
var ErrNotFound = errors.New("user not found")

// Repo persists user profiles keyed by provider-prefixed id.
type Repo interface {
	// Upsert inserts the profile or replaces its mutable fields, keeping
	// the original creation time.
	Upsert(ctx context.Context, user User) error
	// GetByID loads a profile, or ErrNotFound when none exists.
	GetByID(ctx context.Context, userID string) (User, error)
}
