package interviews

import (
	"fmt"
	"strings"
	"testing"
)

func scriptOf(n int) questionScript {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{ID: 99, Text: fmt.Sprintf("Question %d?", i+1), Category: "technical"}
	}
	return questionScript{Questions: qs}
}

func TestQuestionScriptBounds(t *testing.T) {
	for _, n := range []int{6, 7, 8} {
		script := scriptOf(n)
		if err := script.Validate(); err != nil {
			t.Errorf("%d questions: unexpected error %v", n, err)
		}
	}
	for _, n := range []int{0, 5, 9} {
		script := scriptOf(n)
		if err := script.Validate(); err == nil {
			t.Errorf("%d questions: expected validation error", n)
		}
	}
}

func TestQuestionScriptRejectsEmptyText(t *testing.T) {
	script := scriptOf(6)
	script.Questions[3].Text = "   "
	err := script.Validate()
	if err == nil || !strings.Contains(err.Error(), "question 4") {
		t.Fatalf("expected empty-text error for question 4, got %v", err)
	}
}

func TestQuestionScriptNormalize(t *testing.T) {
	script := scriptOf(6)
	script.Questions[0].Category = "technical"
	script.Questions[2].Category = ""
	script.Questions[4].Category = "behavioral"
	script.Questions[5].Category = "technical"
	script.Questions[1].Text = "  Padded question?  "

	script.normalize()

	for i, q := range script.Questions {
		if q.ID != i+1 {
			t.Errorf("question %d has id %d, want %d", i, q.ID, i+1)
		}
	}
	if script.Questions[0].Category != "introduction" {
		t.Errorf("first category = %q, want introduction", script.Questions[0].Category)
	}
	if script.Questions[5].Category != "closing" {
		t.Errorf("last category = %q, want closing", script.Questions[5].Category)
	}
	if script.Questions[2].Category != "competency" {
		t.Errorf("blank category = %q, want competency default", script.Questions[2].Category)
	}
	if script.Questions[4].Category != "behavioral" {
		t.Errorf("explicit category = %q, want preserved", script.Questions[4].Category)
	}
	if script.Questions[1].Text != "Padded question?" {
		t.Errorf("text = %q, want trimmed", script.Questions[1].Text)
	}
}

func TestAnswerEvaluationRange(t *testing.T) {
	eval := answerEvaluation{Scores: RubricScores{
		Relevance:     ScoreDetail{Score: 0},
		Depth:         ScoreDetail{Score: 5},
		Competency:    ScoreDetail{Score: 3},
		Communication: ScoreDetail{Score: 4},
	}}
	if err := eval.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eval.Scores.Depth.Score = 6
	if err := eval.Validate(); err == nil || !strings.Contains(err.Error(), "depth") {
		t.Fatalf("expected depth range error, got %v", err)
	}

	eval.Scores.Depth.Score = -1
	if err := eval.Validate(); err == nil {
		t.Fatal("expected negative score to fail validation")
	}
}

func TestGapAnalysisValidate(t *testing.T) {
	gap := GapAnalysis{MatchScore: 72, ProbeAreas: []ProbeArea{{Area: "AWS", Priority: "High"}}}
	if err := gap.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gap.MatchScore = 101
	if err := gap.Validate(); err == nil {
		t.Fatal("expected match score range error")
	}

	gap.MatchScore = 50
	gap.ProbeAreas[0].Priority = "urgent"
	if err := gap.Validate(); err == nil {
		t.Fatal("expected priority enum error")
	}
}

func TestRecommendationValidate(t *testing.T) {
	rec := Recommendation{Verdict: VerdictRecommend, Confidence: 80}
	if err := rec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec.Verdict = "MAYBE"
	if err := rec.Validate(); err == nil {
		t.Fatal("expected verdict enum error")
	}

	rec.Verdict = VerdictDoNotRecommend
	rec.Confidence = 101
	if err := rec.Validate(); err == nil {
		t.Fatal("expected confidence range error")
	}
}

func TestCandidateProfileValidate(t *testing.T) {
	profile := CandidateProfile{TotalExperienceYears: 6.5}
	if err := profile.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	profile.TotalExperienceYears = -1
	if err := profile.Validate(); err == nil {
		t.Fatal("expected negative experience error")
	}
}

func TestRoleRequirementValidate(t *testing.T) {
	role := RoleRequirement{Title: "Senior Backend Engineer"}
	if err := role.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	role.Title = " "
	if err := role.Validate(); err == nil {
		t.Fatal("expected empty title error")
	}
}
