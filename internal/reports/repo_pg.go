package reports

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a report artifact.
func (r *PGRepo) Create(ctx context.Context, artifact Artifact) error {
	const query = `
INSERT INTO report_artifacts (
    id, user_id, session_id, format, file_name, storage_key, mime_type, size_bytes, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		artifact.ID,
		artifact.UserID,
		artifact.SessionID,
		artifact.Format,
		artifact.FileName,
		artifact.StorageKey,
		artifact.MimeType,
		artifact.SizeBytes,
		artifact.CreatedAt,
	)
	return err
}

// GetByID returns an artifact by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, artifactID string) (Artifact, error) {
	const query = `
SELECT id, user_id, session_id, format, file_name, storage_key, mime_type, size_bytes, created_at
FROM report_artifacts
WHERE id = $1
LIMIT 1`
	var artifact Artifact
	err := r.DB.QueryRowContext(ctx, query, artifactID).Scan(
		&artifact.ID,
		&artifact.UserID,
		&artifact.SessionID,
		&artifact.Format,
		&artifact.FileName,
		&artifact.StorageKey,
		&artifact.MimeType,
		&artifact.SizeBytes,
		&artifact.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artifact{}, ErrNotFound
		}
		return Artifact{}, err
	}
	if artifact.UserID != userID {
		return Artifact{}, ErrForbidden
	}
	return artifact, nil
}

// ListByUser lists artifacts ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Artifact, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, session_id, format, file_name, storage_key, mime_type, size_bytes, created_at
FROM report_artifacts
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var artifact Artifact
		if err := rows.Scan(
			&artifact.ID,
			&artifact.UserID,
			&artifact.SessionID,
			&artifact.Format,
			&artifact.FileName,
			&artifact.StorageKey,
			&artifact.MimeType,
			&artifact.SizeBytes,
			&artifact.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, artifact)
	}
	return out, rows.Err()
}

// DeleteByUser removes all artifacts owned by a user and reports how
// many rows were removed.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM report_artifacts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	deleted, _ := res.RowsAffected()
	return int(deleted), nil
}

// ClaimGuest reassigns artifacts owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE report_artifacts
SET user_id = $1
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

var _ Repo = (*PGRepo)(nil)
