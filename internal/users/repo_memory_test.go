package users

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepoUpsertPreservesCreatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.Upsert(ctx, User{ID: "u1", Email: "old@example.com"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	first, err := repo.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get after first upsert: %v", err)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be set")
	}

	if err := repo.Upsert(ctx, User{ID: "u1", Email: "new@example.com", FullName: "New Name"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	second, err := repo.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get after second upsert: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt changed across upserts: %v vs %v", first.CreatedAt, second.CreatedAt)
	}
	if second.Email != "new@example.com" || second.FullName != "New Name" {
		t.Fatalf("upsert did not replace fields: %+v", second)
	}
}

func TestMemoryRepoGetMissingUser(t *testing.T) {
	repo := NewMemoryRepo()

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoRespectsCanceledContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Upsert(ctx, User{ID: "u1", Email: "e@example.com"}); err == nil {
		t.Fatalf("expected context error on upsert")
	}
	if _, err := repo.GetByID(ctx, "u1"); err == nil {
		t.Fatalf("expected context error on get")
	}
}
