package usage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConsumeStopsAtLimit(t *testing.T) {
	svc := NewService(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Consume(ctx, "u1", 1); err != nil {
			t.Fatalf("Consume %d: %v", i, err)
		}
	}

	ok, u, err := svc.CanConsume(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("CanConsume: %v", err)
	}
	if ok {
		t.Fatalf("expected limit reached, usage %+v", u)
	}
	if _, err := svc.Consume(ctx, "u1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
}

func TestConsumeIsPerUser(t *testing.T) {
	svc := NewService(1)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 1); err != nil {
		t.Fatalf("Consume u1: %v", err)
	}
	if _, err := svc.Consume(ctx, "u2", 1); err != nil {
		t.Fatalf("Consume u2: %v", err)
	}
}

func TestResetClearsUsed(t *testing.T) {
	svc := NewService(3)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 2); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	u, err := svc.Reset(ctx, "u1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("expected used 0 after reset, got %d", u.Used)
	}
	if u.Limit != 3 {
		t.Fatalf("expected limit preserved, got %d", u.Limit)
	}
}

func TestExpiredPeriodRolls(t *testing.T) {
	store := newMemoryStore(5)
	svc := NewPostgresService(store)
	ctx := context.Background()

	if _, err := svc.Consume(ctx, "u1", 4); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	store.mu.Lock()
	u := store.data["u1"]
	u.ResetsAt = time.Now().UTC().Add(-time.Hour)
	store.data["u1"] = u
	store.mu.Unlock()

	got, err := svc.EnsurePeriod(ctx, "u1")
	if err != nil {
		t.Fatalf("EnsurePeriod: %v", err)
	}
	if got.Used != 0 {
		t.Fatalf("expected rollover to clear used, got %d", got.Used)
	}
	if !got.ResetsAt.After(time.Now().UTC()) {
		t.Fatalf("expected new window in the future, got %v", got.ResetsAt)
	}
}

func TestDefaultLimitApplied(t *testing.T) {
	svc := NewService(0)
	u, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.Limit != DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultLimit, u.Limit)
	}
	if u.Plan != defaultPlan {
		t.Fatalf("expected default plan, got %q", u.Plan)
	}
}
