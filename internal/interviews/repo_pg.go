package interviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres. The full session travels as a
// JSONB blob; status, failed stage and timestamps are promoted to
// columns for indexing and dashboards.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new session row.
func (r *PGRepo) Create(ctx context.Context, session Session) error {
	const query = `
INSERT INTO interviews (id, user_id, status, stage, state, created_at, updated_at, last_activity_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	state, err := marshalSessionState(session)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Status,
		session.FailedStage,
		state,
		session.CreatedAt,
		session.UpdatedAt,
		session.UpdatedAt,
	)
	return err
}

// GetByID returns one session.
func (r *PGRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	const query = `SELECT state FROM interviews WHERE id = $1`
	var state []byte
	err := r.DB.QueryRowContext(ctx, query, sessionID).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return unmarshalSessionState(state)
}

// Update replaces the stored session and bumps activity timestamps.
func (r *PGRepo) Update(ctx context.Context, session Session) error {
	const query = `
UPDATE interviews
SET status = $2, stage = $3, state = $4, updated_at = $5, last_activity_at = $6
WHERE id = $1`
	state, err := marshalSessionState(session)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx, query,
		session.ID,
		session.Status,
		session.FailedStage,
		state,
		session.UpdatedAt,
		now,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns a user's sessions, newest first, with limit/offset.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT state FROM interviews
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// ListAll returns every session, newest first.
func (r *PGRepo) ListAll(ctx context.Context) ([]Session, error) {
	const query = `SELECT state FROM interviews ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// DeleteByUser removes every session owned by a user.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	const query = `DELETE FROM interviews WHERE user_id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ClaimGuest reassigns sessions owned by a guest user to an authenticated
// user. Ownership lives in both the promoted column and the state blob,
// so both are rewritten together.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE interviews
SET user_id = $1, state = jsonb_set(state, '{user_id}', to_jsonb($1::text))
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	sessions := make([]Session, 0, 8)
	for rows.Next() {
		var state []byte
		if err := rows.Scan(&state); err != nil {
			return nil, err
		}
		session, err := unmarshalSessionState(state)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func marshalSessionState(session Session) ([]byte, error) {
	state, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session state: %w", err)
	}
	return state, nil
}

func unmarshalSessionState(state []byte) (Session, error) {
	var session Session
	if err := json.Unmarshal(state, &session); err != nil {
		return Session{}, fmt.Errorf("unmarshal session state: %w", err)
	}
	return session, nil
}

var _ Repo = (*PGRepo)(nil)
