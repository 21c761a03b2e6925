package usage

import (
	"context"
	"sync"
	"time"
)

// memoryStore keeps quota rows in process memory for dev runs. A zero
// limit falls back to DefaultLimit when a row is first created.
type memoryStore struct {
	mu    sync.RWMutex
	limit int
	data  map[string]Usage
}

func newMemoryStore(limit int) *memoryStore {
	return &memoryStore{
		limit: limit,
		data:  make(map[string]Usage),
	}
}

// refreshLocked returns the row for userID, creating it or rolling an
// expired window first. Callers hold the write lock.
func (s *memoryStore) refreshLocked(userID string, now time.Time) Usage {
	u, ok := s.data[userID]
	if !ok {
		u = defaultUsage(s.limit)
	}
	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = now.Add(periodLength)
	}
	s.data[userID] = u
	return u
}

func (s *memoryStore) Get(ctx context.Context, userID string) (Usage, error) {
	return s.EnsurePeriod(ctx, userID)
}

func (s *memoryStore) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(userID, time.Now().UTC()), nil
}

func (s *memoryStore) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.refreshLocked(userID, time.Now().UTC())
	if n <= 0 {
		return u, nil
	}
	if u.Used+n > u.Limit {
		return Usage{}, ErrLimitReached
	}
	u.Used += n
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data[userID]
	if !ok {
		u = defaultUsage(s.limit)
	}
	u.Used = 0
	u.ResetsAt = time.Now().UTC().Add(periodLength)
	s.data[userID] = u
	return u, nil
}
