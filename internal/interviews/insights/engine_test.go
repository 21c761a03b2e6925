package insights

import (
	"reflect"
	"strings"
	"testing"
)

func fullAggregates(relevance, depth, competency, communication float64) map[string]float64 {
	return map[string]float64{
		"relevance":     relevance,
		"depth":         depth,
		"competency":    competency,
		"communication": communication,
	}
}

func byID(items []Insight) map[string]Insight {
	out := make(map[string]Insight, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}

func TestDeriveDimensionBands(t *testing.T) {
	input := Input{
		Aggregates:     fullAggregates(4.5, 2.0, 3.0, 4.0),
		Overall:        3.4,
		AnswerCount:    6,
		TotalQuestions: 6,
	}
	got := byID(Derive(input))

	if _, ok := got["DIM_RELEVANCE_HIGH"]; !ok {
		t.Error("relevance 4.5 should be a strength")
	}
	low, ok := got["DIM_DEPTH_LOW"]
	if !ok {
		t.Fatal("depth 2.0 should be a critical development area")
	}
	if low.Severity != "critical" || low.Kind != KindDevelopment {
		t.Fatalf("depth insight = %+v", low)
	}
	if !strings.Contains(low.Detail, "2.00") || !strings.Contains(low.Detail, "6 answers") {
		t.Fatalf("depth detail = %q, want the mean and answer count cited", low.Detail)
	}
	if _, ok := got["DIM_COMPETENCY_MID"]; !ok {
		t.Error("competency 3.0 should be a warning")
	}
	for id := range got {
		if strings.HasPrefix(id, "DIM_COMMUNICATION") {
			t.Errorf("communication 4.0 sits between bands, got %s", id)
		}
	}
}

func TestDeriveSkipsDimensionsWithoutAnswers(t *testing.T) {
	input := Input{
		Aggregates:     fullAggregates(0, 0, 0, 0),
		AnswerCount:    0,
		TotalQuestions: 6,
	}
	for _, insight := range Derive(input) {
		if strings.HasPrefix(insight.ID, "DIM_") {
			t.Fatalf("no answers were scored, yet got %s", insight.ID)
		}
	}
}

func TestDeriveCoverage(t *testing.T) {
	low := Input{Aggregates: fullAggregates(4, 4, 4, 4), AnswerCount: 2, TotalQuestions: 6}
	if _, ok := byID(Derive(low))["COVERAGE_LOW"]; !ok {
		t.Error("2 of 6 answers should flag low coverage")
	}

	enough := Input{Aggregates: fullAggregates(4, 4, 4, 4), AnswerCount: 3, TotalQuestions: 6}
	if _, ok := byID(Derive(enough))["COVERAGE_LOW"]; ok {
		t.Error("3 of 6 answers is enough coverage")
	}
}

func TestDeriveGapMaterial(t *testing.T) {
	input := Input{
		Aggregates:     fullAggregates(4, 4, 4, 4),
		AnswerCount:    6,
		TotalQuestions: 6,
		MissingSkills:  []string{"AWS", "Terraform", "aws"},
		Concerns:       []string{"Job hopping (3 roles in 2 years)"},
		Strengths:      []string{"Deep Go experience"},
	}
	got := byID(Derive(input))

	missing, ok := got["GAP_MISSING_SKILLS"]
	if !ok {
		t.Fatal("missing skills should produce an insight")
	}
	if strings.Count(missing.Detail, "AWS")+strings.Count(missing.Detail, "aws") != 1 {
		t.Fatalf("missing-skills detail should deduplicate case-insensitively: %q", missing.Detail)
	}
	if _, ok := got["GAP_CONCERN_job-hopping-3-roles-in-2-years"]; !ok {
		t.Fatalf("concern id not slugified as expected: %v", keysOf(got))
	}
	if _, ok := got["GAP_STRENGTH_deep-go-experience"]; !ok {
		t.Fatalf("strength id not slugified as expected: %v", keysOf(got))
	}
}

func keysOf(m map[string]Insight) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDeriveCapsAndOrders(t *testing.T) {
	input := Input{
		Aggregates:     fullAggregates(1.0, 1.5, 2.0, 2.2),
		AnswerCount:    2,
		TotalQuestions: 8,
		MissingSkills:  []string{"AWS", "Terraform", "Kafka"},
		Concerns:       []string{"c1", "c2", "c3", "c4"},
		Strengths:      []string{"s1", "s2"},
	}
	got := Derive(input)

	if len(got) > 7 {
		t.Fatalf("insights = %d, want at most 7", len(got))
	}
	for i, insight := range got {
		if insight.Order != i+1 {
			t.Fatalf("insight %d has order %d", i, insight.Order)
		}
	}
	for i := 1; i < len(got); i++ {
		prev := severityRank(got[i-1].Severity)
		cur := severityRank(got[i].Severity)
		if cur > prev {
			t.Fatalf("insights not sorted by severity: %s before %s", got[i-1].ID, got[i].ID)
		}
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	input := Input{
		Aggregates:     fullAggregates(4.5, 2.0, 3.0, 4.4),
		AnswerCount:    5,
		TotalQuestions: 7,
		MissingSkills:  []string{"Kafka", "AWS"},
		Concerns:       []string{"Short tenures"},
		Strengths:      []string{"Systems design depth"},
	}
	first := Derive(input)
	second := Derive(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical input must derive identical insights")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Job hopping (3 roles)", "job-hopping-3-roles"},
		{"  AWS / Terraform  ", "aws-terraform"},
		{"???", "item"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Errorf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
