package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo keeps profiles in process memory. It backs dev runs without a
// database; contents are lost on restart.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byID[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.byID[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}
