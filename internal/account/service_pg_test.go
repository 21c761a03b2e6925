package account

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"interview-backend/internal/documents"
	"interview-backend/internal/interviews"
	"interview-backend/internal/reports"
)

func newPGService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	svc := NewService(&documents.PGRepo{DB: db}, &interviews.PGRepo{DB: db}, &reports.PGRepo{DB: db}, nil)
	return svc, mock
}

func TestClaimGuestUsesSingleTransaction(t *testing.T) {
	svc, mock := newPGService(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").
		WithArgs("user-1", "guest:g1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE interviews").
		WithArgs("user-1", "guest:g1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE report_artifacts").
		WithArgs("user-1", "guest:g1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	result, err := svc.ClaimGuest(context.Background(), "guest:g1", "user-1")
	if err != nil {
		t.Fatalf("ClaimGuest: %v", err)
	}
	want := ClaimResult{MigratedDocuments: 2, MigratedInterviews: 1, MigratedArtifacts: 3}
	if result != want {
		t.Fatalf("expected %+v, got %+v", want, result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClaimGuestRollsBackOnFailure(t *testing.T) {
	svc, mock := newPGService(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").
		WithArgs("user-1", "guest:g1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE interviews").
		WithArgs("user-1", "guest:g1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if _, err := svc.ClaimGuest(context.Background(), "guest:g1", "user-1"); err == nil {
		t.Fatal("expected error when a claim statement fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClaimGuestValidatesInput(t *testing.T) {
	svc, _ := newPGService(t)

	if _, err := svc.ClaimGuest(context.Background(), "", "user-1"); err == nil {
		t.Fatal("expected error for empty guest id")
	}
	if _, err := svc.ClaimGuest(context.Background(), "guest:g1", "  "); err == nil {
		t.Fatal("expected error for blank authed id")
	}
}

func TestPurgeUsesSingleTransaction(t *testing.T) {
	svc, mock := newPGService(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM documents").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM interviews").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM report_artifacts").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM usage").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.Purge(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	want := PurgeResult{DeletedDocuments: 2, DeletedInterviews: 4, DeletedArtifacts: 1}
	if result != want {
		t.Fatalf("expected %+v, got %+v", want, result)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSharedPGRequiresAllPostgresRepos(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(&documents.PGRepo{DB: db}, interviews.NewMemoryRepo(), &reports.PGRepo{DB: db}, nil)
	if svc.sharedPG() != nil {
		t.Fatal("expected no shared database with a memory repo in the mix")
	}

	svc = NewService(&documents.PGRepo{DB: db}, &interviews.PGRepo{DB: db}, &reports.PGRepo{DB: db}, nil)
	if svc.sharedPG() == nil {
		t.Fatal("expected shared database when all repos are Postgres")
	}

	var nilDB *sql.DB
	svc = NewService(&documents.PGRepo{DB: nilDB}, &interviews.PGRepo{DB: db}, &reports.PGRepo{DB: db}, nil)
	if svc.sharedPG() != nil {
		t.Fatal("expected no shared database when a repo has no connection")
	}
}
