package users

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo stores profiles in the users table.
type PGRepo struct {
	DB *sql.DB
}

const upsertUserSQL = `
INSERT INTO users (id, email, full_name, given_name, family_name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (id) DO UPDATE SET
    email       = EXCLUDED.email,
    full_name   = EXCLUDED.full_name,
    given_name  = EXCLUDED.given_name,
    family_name = EXCLUDED.family_name,
    picture_url = EXCLUDED.picture_url,
    updated_at  = now()`

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	_, err := r.DB.ExecContext(ctx, upsertUserSQL,
		user.ID,
		user.Email,
		orNull(user.FullName),
		orNull(user.GivenName),
		orNull(user.FamilyName),
		orNull(user.PictureURL),
	)
	return err
}

const getUserSQL = `
SELECT id, email, full_name, given_name, family_name, picture_url, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	var (
		user                                        User
		fullName, givenName, familyName, pictureURL sql.NullString
		updatedAt                                   sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, getUserSQL, userID).Scan(
		&user.ID,
		&user.Email,
		&fullName,
		&givenName,
		&familyName,
		&pictureURL,
		&user.CreatedAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	user.FullName = fullName.String
	user.GivenName = givenName.String
	user.FamilyName = familyName.String
	user.PictureURL = pictureURL.String
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = user.CreatedAt
	}
	return user, nil
}

// orNull maps blank strings to SQL NULL so optional profile columns stay
// null instead of empty.
func orNull(value string) any {
	if value == "" {
		return nil
	}
	return value
}
