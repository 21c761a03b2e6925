package usage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newQuotaMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func quotaRows(used, limit int, resetsAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"plan", "limit_amount", "used", "resets_at"}).
		AddRow(defaultPlan, limit, used, resetsAt)
}

func TestPGConsumeIncrementsUsed(t *testing.T) {
	db, mock := newQuotaMock(t)

	future := time.Now().UTC().Add(time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockRowSQL)).
		WithArgs("u1").
		WillReturnRows(quotaRows(2, 10, future))
	mock.ExpectExec(regexp.QuoteMeta(updateUsedSQL)).
		WithArgs(3, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := NewPGStore(db, 10).Consume(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if u.Used != 3 {
		t.Fatalf("used = %d, want 3", u.Used)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGConsumeAtLimitFails(t *testing.T) {
	db, mock := newQuotaMock(t)

	future := time.Now().UTC().Add(time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockRowSQL)).
		WithArgs("u1").
		WillReturnRows(quotaRows(10, 10, future))
	mock.ExpectRollback()

	if _, err := NewPGStore(db, 10).Consume(context.Background(), "u1", 1); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("got %v, want ErrLimitReached", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGEnsureCreatesMissingRow(t *testing.T) {
	db, mock := newQuotaMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockRowSQL)).
		WithArgs("u2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(insertRowSQL)).
		WithArgs("u2", defaultPlan, 10, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := NewPGStore(db, 10).EnsurePeriod(context.Background(), "u2")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if u.Plan != defaultPlan || u.Limit != 10 || u.Used != 0 {
		t.Fatalf("unexpected row: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGEnsureRollsExpiredWindow(t *testing.T) {
	db, mock := newQuotaMock(t)

	expired := time.Now().UTC().Add(-time.Minute)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockRowSQL)).
		WithArgs("u1").
		WillReturnRows(quotaRows(7, 10, expired))
	mock.ExpectExec(regexp.QuoteMeta(rolloverSQL)).
		WithArgs(0, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := NewPGStore(db, 10).EnsurePeriod(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if u.Used != 0 {
		t.Fatalf("used = %d, want 0 after rollover", u.Used)
	}
	if !u.ResetsAt.After(time.Now().UTC()) {
		t.Fatalf("resetsAt %v not in the future", u.ResetsAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGResetUpsertsZeroedRow(t *testing.T) {
	db, mock := newQuotaMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(resetRowSQL)).
		WithArgs("u1", defaultPlan, 10, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := NewPGStore(db, 10).Reset(context.Background(), "u1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if u.Used != 0 || u.Plan != defaultPlan {
		t.Fatalf("unexpected row: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
