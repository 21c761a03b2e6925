package reports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores report artifacts in memory and is safe for
// concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Artifact
	byUser map[string][]Artifact
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Artifact),
		byUser: make(map[string][]Artifact),
	}
}

// Create stores the artifact.
func (r *MemoryRepo) Create(ctx context.Context, artifact Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[artifact.ID] = artifact
	r.byUser[artifact.UserID] = append(r.byUser[artifact.UserID], artifact)
	return nil
}

// GetByID returns an artifact by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, artifactID string) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	artifact, ok := r.byID[artifactID]
	if !ok {
		return Artifact{}, ErrNotFound
	}
	if artifact.UserID != userID {
		return Artifact{}, ErrForbidden
	}
	return artifact, nil
}

// ListByUser returns artifacts for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	owned := r.byUser[userID]
	r.mu.RUnlock()

	if len(owned) == 0 || offset >= len(owned) {
		return []Artifact{}, nil
	}

	artifacts := make([]Artifact, len(owned))
	copy(artifacts, owned)
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].CreatedAt.After(artifacts[j].CreatedAt)
	})

	end := len(artifacts)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return artifacts[offset:end], nil
}

// DeleteByUser removes all artifacts owned by a user and reports how
// many were removed.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := r.byUser[userID]
	for _, artifact := range owned {
		delete(r.byID, artifact.ID)
	}
	delete(r.byUser, userID)
	return len(owned), nil
}

// ClaimGuest reassigns artifacts owned by a guest identity to an
// authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := r.byUser[guestUserID]
	if len(owned) == 0 {
		return 0, nil
	}
	for i := range owned {
		owned[i].UserID = authedUserID
		r.byID[owned[i].ID] = owned[i]
		r.byUser[authedUserID] = append(r.byUser[authedUserID], owned[i])
	}
	delete(r.byUser, guestUserID)
	return len(owned), nil
}

var _ Repo = (*MemoryRepo)(nil)
