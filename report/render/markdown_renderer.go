package render

import (
	"fmt"
	"strings"

	"interview-backend/report/model"
)

const markdownHeaderTemplate = `# Interview Report: {{CANDIDATE}}

- **Role:** {{ROLE}}
- **Generated:** {{DATE}}
- **Verdict:** {{VERDICT}} ({{CONFIDENCE}}% confidence)
- **Overall score:** {{OVERALL}} / 5
- **Questions answered:** {{ANSWERED}} of {{TOTAL}}`

// RenderMarkdown renders a report Document as a Markdown artifact.
func RenderMarkdown(doc model.Document) ([]byte, error) {
	if err := validateHeader(doc); err != nil {
		return nil, err
	}

	sections := []string{
		renderMarkdownHeader(doc),
		renderMarkdownSummary(doc),
		renderMarkdownScorecard(doc),
		renderMarkdownQuestions(doc),
		renderMarkdownFindings(doc),
		renderMarkdownGap(doc),
		renderMarkdownTranscript(doc),
	}

	out := joinSections(sections)
	if token := findRemainingToken(out); token != "" {
		return nil, fmt.Errorf("unresolved template token %q", token)
	}
	return []byte(out), nil
}

func renderMarkdownHeader(doc model.Document) string {
	replacements := headerReplacements(doc)
	replacements["CANDIDATE"] = doc.Header.CandidateName
	section := replaceTokens(markdownHeaderTemplate, replacements)
	if doc.Header.Duration != "" {
		section += "\n- **Duration:** " + doc.Header.Duration
	}
	return section
}

func renderMarkdownSummary(doc model.Document) string {
	var b strings.Builder
	b.WriteString("## Recommendation\n\n")
	b.WriteString(strings.TrimSpace(doc.Summary))
	if len(doc.Strengths) > 0 {
		b.WriteString("\n\n**Strengths**\n")
		writeMarkdownList(&b, doc.Strengths)
	}
	if len(doc.DevelopmentAreas) > 0 {
		b.WriteString("\n\n**Development areas**\n")
		writeMarkdownList(&b, doc.DevelopmentAreas)
	}
	return b.String()
}

func renderMarkdownScorecard(doc model.Document) string {
	if len(doc.Scorecard) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Scorecard\n\n")
	b.WriteString("| Dimension | Score |\n")
	b.WriteString("| --- | --- |\n")
	for _, row := range doc.Scorecard {
		b.WriteString("| " + row.Label + " | " + formatScore(row.Score) + " |\n")
	}
	return b.String()
}

func renderMarkdownQuestions(doc model.Document) string {
	if len(doc.Questions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Question Results\n")
	for _, q := range doc.Questions {
		b.WriteString("\n### " + questionHeading(q) + "\n\n")
		b.WriteString("**Q:** " + strings.TrimSpace(q.Question) + "\n\n")
		b.WriteString("**A:** " + strings.TrimSpace(q.Answer) + "\n")
	}
	return b.String()
}

func renderMarkdownFindings(doc model.Document) string {
	if len(doc.Findings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Findings\n")
	for _, f := range doc.Findings {
		b.WriteString("\n- **" + f.Title + "** (" + f.Severity + "): " + f.Detail)
	}
	b.WriteString("\n")
	return b.String()
}

func renderMarkdownGap(doc model.Document) string {
	if doc.Gap == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Role Fit\n\n")
	fmt.Fprintf(&b, "Resume-to-role match score: %d/100\n", doc.Gap.MatchScore)
	if len(doc.Gap.MissingSkills) > 0 {
		b.WriteString("\n- Missing skills: " + strings.Join(doc.Gap.MissingSkills, ", "))
	}
	if len(doc.Gap.Strengths) > 0 {
		b.WriteString("\n- Screening strengths: " + strings.Join(doc.Gap.Strengths, ", "))
	}
	if len(doc.Gap.Concerns) > 0 {
		b.WriteString("\n- Screening concerns: " + strings.Join(doc.Gap.Concerns, ", "))
	}
	b.WriteString("\n")
	return b.String()
}

func renderMarkdownTranscript(doc model.Document) string {
	if len(doc.Transcript) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Transcript\n")
	for _, line := range doc.Transcript {
		b.WriteString("\n**" + line.Speaker + ":** " + strings.TrimSpace(line.Text) + "\n")
	}
	return b.String()
}

func writeMarkdownList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("\n- " + strings.TrimSpace(item))
	}
}
