package util

import (
	"errors"
	"strings"
)

// maxFileNameLen bounds stored file names. Longer names are truncated,
// not rejected, so uploads from verbose ATS exports still work.
const maxFileNameLen = 200

// SanitizeFileName makes an uploaded name safe to embed in a storage
// key. Traversal sequences are rejected outright; separators and
// control characters are replaced.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case r < 0x20 || r == 0x7f:
			return '_'
		default:
			return r
		}
	}, strings.TrimSpace(name))

	if cleaned == "" {
		return "", errors.New("invalid file name")
	}
	if len(cleaned) > maxFileNameLen {
		cleaned = cleaned[:maxFileNameLen]
	}
	return cleaned, nil
}
