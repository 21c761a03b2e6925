package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey maps a user id onto a fixed-width hex token. Storage keys
// embed the token instead of the raw id, which may contain characters
// like ':' from provider-prefixed ids ("google:123", "guest:abc").
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
