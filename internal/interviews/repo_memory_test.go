package interviews

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoIsolatesStoredState(t *testing.T) {
	repo := NewMemoryRepo()
	session := Session{
		ID:        "s-1",
		UserID:    "u1",
		Status:    StatusReady,
		Questions: stubQuestions(6),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Questions[0].Text = "mutated"
	got.Status = StatusError

	again, err := repo.GetByID(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Questions[0].Text == "mutated" || again.Status != StatusReady {
		t.Fatal("caller mutation leaked into the stored session")
	}
}

func TestMemoryRepoUpdateMissing(t *testing.T) {
	repo := NewMemoryRepo()
	err := repo.Update(context.Background(), Session{ID: "nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryRepoHonorsCanceledContext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.Create(ctx, Session{ID: "s-1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if _, err := repo.GetByID(ctx, "s-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
