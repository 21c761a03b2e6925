package contract

import (
	"strings"

	"interview-backend/report/model"
)

const (
	PlaceholderPrefix      = "TO-FILL:"
	PlaceholderCandidate   = "TO-FILL: Candidate name"
	PlaceholderSummary     = "TO-FILL: Recommendation summary"
	PlaceholderStrengths   = "TO-FILL: Strengths"
	PlaceholderDevelopment = "TO-FILL: Development areas"
)

type MissingFieldsError struct {
	Fields []string
}

func (e MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Enforce ensures the sections every delivered report must carry are present.
// When strict is true, missing fields are reported without applying placeholders.
func Enforce(doc *model.Document, strict bool) error {
	missing := collectMissing(doc)
	if strict && len(missing) > 0 {
		return MissingFieldsError{Fields: missing}
	}

	applyPlaceholders(doc, missing)
	return nil
}

func collectMissing(doc *model.Document) []string {
	missing := make([]string, 0, 4)
	if !hasValue(doc.Header.CandidateName) {
		missing = append(missing, "header.candidateName")
	}
	if !hasValue(doc.Summary) {
		missing = append(missing, "summary")
	}
	if !hasItems(doc.Strengths) {
		missing = append(missing, "strengths")
	}
	if !hasItems(doc.DevelopmentAreas) {
		missing = append(missing, "developmentAreas")
	}
	return missing
}

func applyPlaceholders(doc *model.Document, missing []string) {
	missingSet := make(map[string]struct{}, len(missing))
	for _, field := range missing {
		missingSet[field] = struct{}{}
	}

	if _, ok := missingSet["header.candidateName"]; ok {
		doc.Header.CandidateName = PlaceholderCandidate
	}
	if _, ok := missingSet["summary"]; ok {
		doc.Summary = PlaceholderSummary
	}
	if _, ok := missingSet["strengths"]; ok {
		doc.Strengths = []string{PlaceholderStrengths}
	}
	if _, ok := missingSet["developmentAreas"]; ok {
		doc.DevelopmentAreas = []string{PlaceholderDevelopment}
	}
}

func hasValue(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	return !strings.HasPrefix(strings.ToUpper(trimmed), PlaceholderPrefix)
}

func hasItems(items []string) bool {
	for _, item := range items {
		if hasValue(item) {
			return true
		}
	}
	return false
}
