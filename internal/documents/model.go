package documents

import (
	"strings"
	"time"
)

// Document kinds. A résumé and a job description are stored the same
// way; interviews reference one of each by id.
const (
	KindResume         = "resume"
	KindJobDescription = "job_description"
)

// Document represents an uploaded document owned by a user.
type Document struct {
	ID               string
	UserID           string
	Kind             string
	FileName         string
	OriginalFilename string
	MimeType         string
	ContentType      string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	CreatedAt        time.Time
	DeletedAt        *time.Time
}

// NormalizeKind maps free-form input onto a known kind. Unknown values
// return empty.
func NormalizeKind(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case KindResume, "cv":
		return KindResume
	case KindJobDescription, "jd", "job-description":
		return KindJobDescription
	default:
		return ""
	}
}
