package users

import (
	"context"
	"errors"
	"strings"
)

var errNotConfigured = errors.New("users service not configured")

// Service validates profile writes coming from the OAuth callback and
// reads for the identity endpoint.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth persists the identity returned by the OAuth provider so
// interview history and usage stay attached to a stable id.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errNotConfigured
	}
	if strings.TrimSpace(user.ID) == "" {
		return errors.New("user id is required")
	}
	if strings.TrimSpace(user.Email) == "" {
		return errors.New("user email is required")
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errNotConfigured
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}
