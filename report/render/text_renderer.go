package render

import (
	"fmt"
	"strings"

	"interview-backend/report/model"
)

const textHeaderTemplate = `Role:               {{ROLE}}
Generated:          {{DATE}}
Verdict:            {{VERDICT}} ({{CONFIDENCE}}% confidence)
Overall score:      {{OVERALL}} / 5
Questions answered: {{ANSWERED}} of {{TOTAL}}`

// RenderText renders a report Document as a plain-text artifact.
func RenderText(doc model.Document) ([]byte, error) {
	if err := validateHeader(doc); err != nil {
		return nil, err
	}

	sections := []string{
		renderTextHeader(doc),
		renderTextSummary(doc),
		renderTextScorecard(doc),
		renderTextQuestions(doc),
		renderTextFindings(doc),
		renderTextGap(doc),
		renderTextTranscript(doc),
	}

	out := joinSections(sections)
	if token := findRemainingToken(out); token != "" {
		return nil, fmt.Errorf("unresolved template token %q", token)
	}
	return []byte(out), nil
}

func renderTextHeader(doc model.Document) string {
	title := "Interview Report: " + doc.Header.CandidateName
	body := replaceTokens(textHeaderTemplate, headerReplacements(doc))
	if doc.Header.Duration != "" {
		body += "\nDuration:           " + doc.Header.Duration
	}
	return underline(title, '=') + "\n" + body
}

func renderTextSummary(doc model.Document) string {
	var b strings.Builder
	b.WriteString(underline("Recommendation", '-') + "\n")
	b.WriteString(strings.TrimSpace(doc.Summary))
	if len(doc.Strengths) > 0 {
		b.WriteString("\n\nStrengths:")
		writeTextList(&b, doc.Strengths)
	}
	if len(doc.DevelopmentAreas) > 0 {
		b.WriteString("\n\nDevelopment areas:")
		writeTextList(&b, doc.DevelopmentAreas)
	}
	return b.String()
}

func renderTextScorecard(doc model.Document) string {
	if len(doc.Scorecard) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(underline("Scorecard", '-') + "\n")
	for _, row := range doc.Scorecard {
		fmt.Fprintf(&b, "%-16s %s\n", row.Label, formatScore(row.Score))
	}
	return b.String()
}

func renderTextQuestions(doc model.Document) string {
	if len(doc.Questions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(underline("Question Results", '-'))
	for _, q := range doc.Questions {
		b.WriteString("\n\n" + questionHeading(q) + "\n")
		b.WriteString("  Q: " + strings.TrimSpace(q.Question) + "\n")
		b.WriteString("  A: " + strings.TrimSpace(q.Answer))
	}
	return b.String()
}

func renderTextFindings(doc model.Document) string {
	if len(doc.Findings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(underline("Findings", '-'))
	for _, f := range doc.Findings {
		b.WriteString("\n* " + f.Title + " (" + f.Severity + "): " + f.Detail)
	}
	return b.String()
}

func renderTextGap(doc model.Document) string {
	if doc.Gap == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(underline("Role Fit", '-') + "\n")
	fmt.Fprintf(&b, "Resume-to-role match score: %d/100", doc.Gap.MatchScore)
	if len(doc.Gap.MissingSkills) > 0 {
		b.WriteString("\nMissing skills: " + strings.Join(doc.Gap.MissingSkills, ", "))
	}
	if len(doc.Gap.Strengths) > 0 {
		b.WriteString("\nScreening strengths: " + strings.Join(doc.Gap.Strengths, ", "))
	}
	if len(doc.Gap.Concerns) > 0 {
		b.WriteString("\nScreening concerns: " + strings.Join(doc.Gap.Concerns, ", "))
	}
	return b.String()
}

func renderTextTranscript(doc model.Document) string {
	if len(doc.Transcript) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(underline("Transcript", '-'))
	for _, line := range doc.Transcript {
		b.WriteString("\n" + line.Speaker + ": " + strings.TrimSpace(line.Text))
	}
	return b.String()
}

func underline(title string, ch byte) string {
	return title + "\n" + strings.Repeat(string(ch), len(title))
}

func writeTextList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("\n  - " + strings.TrimSpace(item))
	}
}
