// Package users stores the profiles behind interview ownership. IDs are
// provider-prefixed ("google:<sub>", "guest:<uuid>"); guests never get a
// row here, only authenticated users are persisted.
package users

import "time"

// User is the stored profile for an authenticated caller. Field values
// other than ID and Email come from the OAuth userinfo payload and may be
// blank.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
