package render

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"interview-backend/report/model"
)

// Output formats understood by Render.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// ErrUnknownFormat is returned when Render is asked for a format it
// cannot produce.
var ErrUnknownFormat = errors.New("unknown render format")

// Render produces the report artifact bytes for the requested format.
func Render(doc model.Document, format string) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return RenderMarkdown(doc)
	case FormatText:
		return RenderText(doc)
	default:
		return nil, ErrUnknownFormat
	}
}

var tokenPattern = regexp.MustCompile(`{{[^}]+}}`)

// replaceTokens substitutes {{TOKEN}} markers in a section template.
func replaceTokens(template string, replacements map[string]string) string {
	out := template
	for token, value := range replacements {
		out = strings.ReplaceAll(out, "{{"+token+"}}", value)
	}
	return out
}

// findRemainingToken reports the first unresolved template token, or ""
// when every marker was replaced.
func findRemainingToken(text string) string {
	if match := tokenPattern.FindString(text); match != "" {
		return match
	}
	if idx := strings.Index(text, "{{"); idx != -1 {
		end := idx + 40
		if end > len(text) {
			end = len(text)
		}
		return text[idx:end]
	}
	if idx := strings.Index(text, "}}"); idx != -1 {
		start := idx - 40
		if start < 0 {
			start = 0
		}
		return text[start : idx+2]
	}
	return ""
}

func validateHeader(doc model.Document) error {
	if strings.TrimSpace(doc.Header.RoleTitle) == "" {
		return errors.New("role title is required")
	}
	if strings.TrimSpace(doc.Header.Verdict) == "" {
		return errors.New("verdict is required")
	}
	return nil
}

// joinSections drops empty sections and separates the rest with a blank
// line, ending the document with a single newline.
func joinSections(sections []string) string {
	kept := make([]string, 0, len(sections))
	for _, section := range sections {
		trimmed := strings.TrimRight(section, "\n")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n\n") + "\n"
}

func headerReplacements(doc model.Document) map[string]string {
	return map[string]string{
		"ROLE":       roleLine(doc.Header),
		"DATE":       doc.Header.GeneratedAt,
		"VERDICT":    doc.Header.Verdict,
		"CONFIDENCE": strconv.Itoa(doc.Header.Confidence),
		"OVERALL":    formatScore(doc.Header.OverallScore),
		"ANSWERED":   strconv.Itoa(doc.Header.AnsweredQuestions),
		"TOTAL":      strconv.Itoa(doc.Header.TotalQuestions),
	}
}

func roleLine(h model.Header) string {
	if strings.TrimSpace(h.Company) == "" {
		return h.RoleTitle
	}
	return h.RoleTitle + " at " + h.Company
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func questionHeading(q model.QuestionResult) string {
	parts := make([]string, 0, 3)
	if strings.TrimSpace(q.Category) != "" {
		parts = append(parts, q.Category)
	}
	parts = append(parts, "score "+formatScore(q.Score)+"/5")
	if q.FollowUp {
		parts = append(parts, "follow-up asked")
	}
	return "Q" + strconv.Itoa(q.Number) + " (" + strings.Join(parts, ", ") + ")"
}
