package reports

import "time"

// Artifact formats that can be rendered and stored.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Artifact is a rendered hiring report stored in the object store.
type Artifact struct {
	ID         string
	UserID     string
	SessionID  string
	Format     string
	FileName   string
	StorageKey string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}

func normalizeFormat(format string) (string, bool) {
	switch format {
	case "", FormatMarkdown:
		return FormatMarkdown, true
	case FormatText:
		return FormatText, true
	default:
		return "", false
	}
}

func artifactFileExt(format string) string {
	if format == FormatText {
		return ".txt"
	}
	return ".md"
}

func artifactMimeType(format string) string {
	if format == FormatText {
		return "text/plain; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}
