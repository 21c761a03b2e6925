package insights

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Score bands for dimension means.
const (
	criticalBelow = 2.5
	warningBelow  = 3.5
	strengthAbove = 4.2
)

// Derive builds deterministic insights from interview aggregates. The
// same input always yields the same output: hiring decisions can cite
// these without re-running anything.
func Derive(input Input) []Insight {
	candidates := make([]Insight, 0, 16)
	mappers := []func(Input) []Insight{
		fromDimensions,
		fromCoverage,
		fromMissingSkills,
		fromConcerns,
		fromStrengths,
	}
	for _, mapper := range mappers {
		candidates = append(candidates, mapper(input)...)
	}

	deduped := dedupe(candidates)
	sortInsights(deduped)
	if len(deduped) > 7 {
		deduped = deduped[:7]
	}
	for i := range deduped {
		deduped[i].Order = i + 1
	}
	return deduped
}

func fromDimensions(input Input) []Insight {
	if input.AnswerCount == 0 {
		return nil
	}
	out := make([]Insight, 0, len(dimensionOrder))
	for _, dim := range dimensionOrder {
		mean, ok := input.Aggregates[dim]
		if !ok {
			continue
		}
		copyFor, known := dimensionCopy[dim]
		if !known {
			continue
		}
		switch {
		case mean < criticalBelow:
			out = append(out, Insight{
				ID:        "DIM_" + strings.ToUpper(dim) + "_LOW",
				Kind:      KindDevelopment,
				Dimension: dim,
				Severity:  "critical",
				Title:     copyFor.lowTitle,
				Detail:    fmt.Sprintf("%s (mean %.2f of 5 across %d answers).", copyFor.lowDetail, mean, input.AnswerCount),
				Action:    copyFor.action,
			})
		case mean < warningBelow:
			out = append(out, Insight{
				ID:        "DIM_" + strings.ToUpper(dim) + "_MID",
				Kind:      KindDevelopment,
				Dimension: dim,
				Severity:  "warning",
				Title:     copyFor.midTitle,
				Detail:    fmt.Sprintf("%s (mean %.2f of 5 across %d answers).", copyFor.lowDetail, mean, input.AnswerCount),
				Action:    copyFor.action,
			})
		case mean >= strengthAbove:
			out = append(out, Insight{
				ID:        "DIM_" + strings.ToUpper(dim) + "_HIGH",
				Kind:      KindStrength,
				Dimension: dim,
				Severity:  "info",
				Title:     copyFor.highTitle,
				Detail:    fmt.Sprintf("%s (mean %.2f of 5 across %d answers).", copyFor.highDetail, mean, input.AnswerCount),
			})
		}
	}
	return out
}

func fromCoverage(input Input) []Insight {
	if input.TotalQuestions == 0 {
		return nil
	}
	if input.AnswerCount*2 >= input.TotalQuestions {
		return nil
	}
	return []Insight{{
		ID:       "COVERAGE_LOW",
		Kind:     KindDevelopment,
		Severity: "warning",
		Title:    "Limited interview coverage",
		Detail: fmt.Sprintf("Only %d of %d scripted questions produced a scored answer; treat aggregate scores as low-confidence.",
			input.AnswerCount, input.TotalQuestions),
		Action: "Weigh the written profile and gap analysis more heavily, or re-interview.",
	}}
}

func fromMissingSkills(input Input) []Insight {
	skills := uniqueSortedStrings(input.MissingSkills)
	if len(skills) == 0 {
		return nil
	}
	if len(skills) > 5 {
		skills = skills[:5]
	}
	return []Insight{{
		ID:       "GAP_MISSING_SKILLS",
		Kind:     KindDevelopment,
		Severity: "warning",
		Title:    "Skill gaps against the role",
		Detail:   "The resume showed no evidence of: " + strings.Join(skills, ", ") + ".",
		Action:   "Verify with a skills assessment or plan onboarding training for these areas.",
	}}
}

func fromConcerns(input Input) []Insight {
	out := make([]Insight, 0, len(input.Concerns))
	for _, concern := range input.Concerns {
		trimmed := strings.TrimSpace(concern)
		if trimmed == "" {
			continue
		}
		out = append(out, Insight{
			ID:       "GAP_CONCERN_" + slugify(trimmed),
			Kind:     KindDevelopment,
			Severity: "info",
			Title:    "Pre-interview concern",
			Detail:   trimmed,
		})
	}
	return out
}

func fromStrengths(input Input) []Insight {
	out := make([]Insight, 0, len(input.Strengths))
	for _, strength := range input.Strengths {
		trimmed := strings.TrimSpace(strength)
		if trimmed == "" {
			continue
		}
		out = append(out, Insight{
			ID:       "GAP_STRENGTH_" + slugify(trimmed),
			Kind:     KindStrength,
			Severity: "info",
			Title:    "Profile strength",
			Detail:   trimmed,
		})
	}
	return out
}

func severityRank(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "critical":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}

func kindRank(value string) int {
	if value == KindDevelopment {
		return 2
	}
	return 1
}

func slugify(input string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "item"
	}
	return out
}

func dedupe(items []Insight) []Insight {
	seen := make(map[string]Insight, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = item
		order = append(order, id)
	}
	out := make([]Insight, 0, len(order))
	for _, id := range order {
		out = append(out, seen[id])
	}
	return out
}

func sortInsights(items []Insight) {
	sort.Slice(items, func(i, j int) bool {
		a := items[i]
		b := items[j]
		if severityRank(a.Severity) != severityRank(b.Severity) {
			return severityRank(a.Severity) > severityRank(b.Severity)
		}
		if kindRank(a.Kind) != kindRank(b.Kind) {
			return kindRank(a.Kind) > kindRank(b.Kind)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}

func uniqueSortedStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
