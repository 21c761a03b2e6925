package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	lockRowSQL = `SELECT plan, limit_amount, used, resets_at FROM usage WHERE user_id = $1 FOR UPDATE`

	insertRowSQL = `INSERT INTO usage (user_id, plan, limit_amount, used, resets_at) VALUES ($1, $2, $3, $4, $5)`

	updateUsedSQL = `UPDATE usage SET used = $1 WHERE user_id = $2`

	rolloverSQL = `UPDATE usage SET used = $1, resets_at = $2 WHERE user_id = $3`

	resetRowSQL = `INSERT INTO usage (user_id, plan, limit_amount, used, resets_at) VALUES ($1, $2, $3, 0, $4) ON CONFLICT (user_id) DO UPDATE SET used = 0, resets_at = EXCLUDED.resets_at`
)

// pgStore persists quota rows in the usage table. Rows are created
// lazily under a row lock so concurrent consumers agree on the window.
type pgStore struct {
	db    *sql.DB
	limit int
}

// NewPGStore constructs a Postgres-backed usage store. A limit of zero
// or less selects DefaultLimit for newly created rows.
func NewPGStore(db *sql.DB, limit int) *pgStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &pgStore{db: db, limit: limit}
}

// withTx runs fn in a transaction and commits unless fn fails.
func (s *pgStore) withTx(ctx context.Context, fn func(tx *sql.Tx) (Usage, error)) (Usage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	u, err := fn(tx)
	if err != nil {
		tx.Rollback()
		return Usage{}, err
	}
	if err := tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) Get(ctx context.Context, userID string) (Usage, error) {
	return s.EnsurePeriod(ctx, userID)
}

func (s *pgStore) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	return s.withTx(ctx, func(tx *sql.Tx) (Usage, error) {
		return s.lockRow(ctx, tx, userID)
	})
}

func (s *pgStore) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	return s.withTx(ctx, func(tx *sql.Tx) (Usage, error) {
		u, err := s.lockRow(ctx, tx, userID)
		if err != nil {
			return Usage{}, err
		}
		if n <= 0 {
			return u, nil
		}
		if u.Used+n > u.Limit {
			return Usage{}, ErrLimitReached
		}
		u.Used += n
		if _, err := tx.ExecContext(ctx, updateUsedSQL, u.Used, userID); err != nil {
			return Usage{}, err
		}
		return u, nil
	})
}

func (s *pgStore) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.withTx(ctx, func(tx *sql.Tx) (Usage, error) {
		resetsAt := time.Now().UTC().Add(periodLength)
		if _, err := tx.ExecContext(ctx, resetRowSQL, userID, defaultPlan, s.limit, resetsAt); err != nil {
			return Usage{}, err
		}
		return Usage{Plan: defaultPlan, Limit: s.limit, Used: 0, ResetsAt: resetsAt}, nil
	})
}

// lockRow fetches the caller's row under FOR UPDATE, inserting a fresh
// one when missing and rolling the window when it has lapsed.
func (s *pgStore) lockRow(ctx context.Context, tx *sql.Tx, userID string) (Usage, error) {
	var u Usage
	err := tx.QueryRowContext(ctx, lockRowSQL, userID).Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt)
	if errors.Is(err, sql.ErrNoRows) {
		u = defaultUsage(s.limit)
		if _, err := tx.ExecContext(ctx, insertRowSQL, userID, u.Plan, u.Limit, u.Used, u.ResetsAt); err != nil {
			return Usage{}, err
		}
		return u, nil
	}
	if err != nil {
		return Usage{}, err
	}

	now := time.Now().UTC()
	if !now.Before(u.ResetsAt) {
		u.Used = 0
		u.ResetsAt = now.Add(periodLength)
		if _, err := tx.ExecContext(ctx, rolloverSQL, u.Used, u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
