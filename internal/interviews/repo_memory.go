package interviews

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores sessions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Session
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Session)}
}

// Create stores the session.
func (r *MemoryRepo) Create(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[session.ID] = cloneSession(session)
	return nil
}

// GetByID returns a session by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.byID[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return cloneSession(session), nil
}

// Update replaces the stored session.
func (r *MemoryRepo) Update(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[session.ID]; !ok {
		return ErrNotFound
	}
	r.byID[session.ID] = cloneSession(session)
	return nil
}

// ListByUser returns a user's sessions, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
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
	sessions := make([]Session, 0, len(r.byID))
	for _, s := range r.byID {
		if s.UserID == userID {
			sessions = append(sessions, cloneSession(s))
		}
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	if offset >= len(sessions) {
		return []Session{}, nil
	}
	end := len(sessions)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return sessions[offset:end], nil
}

// ListAll returns every stored session, newest first.
func (r *MemoryRepo) ListAll(ctx context.Context) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	sessions := make([]Session, 0, len(r.byID))
	for _, s := range r.byID {
		sessions = append(sessions, cloneSession(s))
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteByUser removes every session owned by a user.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, s := range r.byID {
		if s.UserID == userID {
			delete(r.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

// ClaimGuest reassigns sessions owned by a guest identity to an
// authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, s := range r.byID {
		if s.UserID != guestUserID {
			continue
		}
		s.UserID = authedUserID
		r.byID[id] = s
		moved++
	}
	return moved, nil
}

var _ Repo = (*MemoryRepo)(nil)
