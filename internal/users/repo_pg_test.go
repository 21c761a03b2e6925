package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPGMock(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoUpsertWritesProfile(t *testing.T) {
	repo, mock := newPGMock(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("google:123", "jordan@example.com", "Jordan Lee", "Jordan", "Lee", "https://example.com/p.png").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), User{
		ID:         "google:123",
		Email:      "jordan@example.com",
		FullName:   "Jordan Lee",
		GivenName:  "Jordan",
		FamilyName: "Lee",
		PictureURL: "https://example.com/p.png",
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpsertNullsBlankFields(t *testing.T) {
	repo, mock := newPGMock(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("google:123", "jordan@example.com", nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), User{ID: "google:123", Email: "jordan@example.com"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansNullableColumns(t *testing.T) {
	repo, mock := newPGMock(t)

	created := time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "email", "full_name", "given_name", "family_name", "picture_url", "created_at", "updated_at",
	}).AddRow("google:123", "jordan@example.com", nil, nil, nil, nil, created, nil)

	mock.ExpectQuery("SELECT id, email, full_name").
		WithArgs("google:123").
		WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), "google:123")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.Email != "jordan@example.com" || user.FullName != "" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.CreatedAt.Equal(created) {
		t.Fatalf("unexpected CreatedAt: %v", user.CreatedAt)
	}
	if user.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt fallback when column is null")
	}
}

func TestPGRepoGetMissingUser(t *testing.T) {
	repo, mock := newPGMock(t)

	mock.ExpectQuery("SELECT id, email, full_name").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
