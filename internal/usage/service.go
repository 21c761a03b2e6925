// Package usage enforces the per-user interview quota. Each account
// gets a fixed allowance per rolling window and starting an interview
// spends one unit.
package usage

import "context"

// quotaStore is the persistence contract shared by the in-memory and
// Postgres implementations.
type quotaStore interface {
	Get(ctx context.Context, userID string) (Usage, error)
	EnsurePeriod(ctx context.Context, userID string) (Usage, error)
	Consume(ctx context.Context, userID string, n int) (Usage, error)
	Reset(ctx context.Context, userID string) (Usage, error)
}

// Service answers quota questions for handlers and the interview
// pipeline.
type Service struct {
	store quotaStore
}

// NewService returns a Service backed by process memory. A limit of
// zero or less selects DefaultLimit.
func NewService(limit int) *Service {
	return &Service{store: newMemoryStore(limit)}
}

// NewPostgresService returns a Service on a shared store, usually the
// one from NewPGStore.
func NewPostgresService(s quotaStore) *Service {
	return &Service{store: s}
}

// Get reports current usage, creating the row on first sight.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	return s.store.Get(ctx, userID)
}

// EnsurePeriod rolls the window forward when it has lapsed and returns
// the row.
func (s *Service) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	return s.store.EnsurePeriod(ctx, userID)
}

// CanConsume reports whether n more units fit in the current window
// without spending them.
func (s *Service) CanConsume(ctx context.Context, userID string, n int) (bool, Usage, error) {
	u, err := s.store.EnsurePeriod(ctx, userID)
	if err != nil {
		return false, Usage{}, err
	}
	ok := n <= 0 || u.Used+n <= u.Limit
	return ok, u, nil
}

// Consume spends n units, failing with ErrLimitReached when the window
// cannot absorb them.
func (s *Service) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	return s.store.Consume(ctx, userID, n)
}

// Reset zeroes the counter and starts a fresh window.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.store.Reset(ctx, userID)
}
