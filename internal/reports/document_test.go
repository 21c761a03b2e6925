package reports

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"interview-backend/internal/interviews"
	"interview-backend/internal/interviews/insights"
	"interview-backend/report/model"
)

func sampleFinalReport() interviews.FinalReport {
	duration := 840.0
	return interviews.FinalReport{
		SessionID:   "11111111-1111-1111-1111-111111111111",
		GeneratedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Candidate:   &interviews.CandidateProfile{Name: "Dana Okafor", Skills: []string{"Go"}},
		Role:        &interviews.RoleRequirement{Title: "Senior Backend Engineer", Company: "Example Corp"},
		Gap: &interviews.GapAnalysis{
			MatchScore:    72,
			MissingSkills: []string{"AWS"},
			Strengths:     []string{"Deep Go experience"},
			Concerns:      []string{"Short tenures"},
		},
		DurationSeconds:   &duration,
		TotalQuestions:    6,
		AnsweredQuestions: 2,
		AggregateScores: map[string]float64{
			"relevance":     4.5,
			"depth":         3.5,
			"competency":    4,
			"communication": 3,
		},
		OverallScore: 3.75,
		Scores: []interviews.AnswerScore{
			{
				QuestionID:     1,
				QuestionText:   "Tell me about yourself.",
				Category:       "introduction",
				AnswerText:     "I build backend services.",
				ChainOfThought: "internal-grading-notes",
				AverageScore:   4,
			},
			{
				QuestionID:   1,
				QuestionText: "Tell me about yourself.",
				Category:     "introduction",
				AnswerText:   "Mostly payment systems.",
				AverageScore: 3.5,
			},
			{
				QuestionID:   2,
				QuestionText: "Describe a hard bug.",
				Category:     "competency",
				AnswerText:   "A deadlock under load.",
				AverageScore: 3.5,
			},
		},
		Recommendation: interviews.Recommendation{
			Verdict:          interviews.VerdictConsider,
			Summary:          "Solid backend depth, limited cloud exposure.",
			Strengths:        []string{"Concurrency fundamentals"},
			DevelopmentAreas: []string{"AWS operations"},
			Confidence:       70,
		},
		Insights: []insights.Insight{
			{
				ID:       "DIM_RELEVANCE_HIGH",
				Kind:     insights.KindStrength,
				Severity: "info",
				Title:    "Strong relevance",
				Detail:   "Averaged 4.50 across 2 answers.",
				Order:    1,
			},
		},
		Transcript: []interviews.TranscriptEntry{
			{Role: interviews.RoleInterviewer, Text: "Welcome, thanks for joining."},
			{Role: interviews.RoleCandidate, Text: "Glad to be here."},
		},
	}
}

func TestBuildDocumentMapsReport(t *testing.T) {
	doc := buildDocument(sampleFinalReport())

	if doc.Header.CandidateName != "Dana Okafor" {
		t.Fatalf("unexpected candidate: %q", doc.Header.CandidateName)
	}
	if doc.Header.RoleTitle != "Senior Backend Engineer" || doc.Header.Company != "Example Corp" {
		t.Fatalf("unexpected role: %q at %q", doc.Header.RoleTitle, doc.Header.Company)
	}
	if doc.Header.GeneratedAt != "2026-03-14" {
		t.Fatalf("unexpected date: %q", doc.Header.GeneratedAt)
	}
	if doc.Header.Verdict != model.VerdictConsider || doc.Header.Confidence != 70 {
		t.Fatalf("unexpected verdict: %q (%d)", doc.Header.Verdict, doc.Header.Confidence)
	}
	if doc.Header.OverallScore != 3.75 {
		t.Fatalf("unexpected overall: %v", doc.Header.OverallScore)
	}
	if doc.Header.AnsweredQuestions != 2 || doc.Header.TotalQuestions != 6 {
		t.Fatalf("unexpected counts: %d/%d", doc.Header.AnsweredQuestions, doc.Header.TotalQuestions)
	}
	if doc.Header.Duration != "14m0s" {
		t.Fatalf("unexpected duration: %q", doc.Header.Duration)
	}

	if len(doc.Scorecard) != 4 {
		t.Fatalf("expected 4 scorecard rows, got %d", len(doc.Scorecard))
	}
	wantOrder := []string{"Relevance", "Depth", "Competency", "Communication"}
	for i, label := range wantOrder {
		if doc.Scorecard[i].Label != label {
			t.Fatalf("expected %s at row %d, got %s", label, i, doc.Scorecard[i].Label)
		}
	}
	if doc.Scorecard[0].Score != 4.5 {
		t.Fatalf("unexpected relevance score: %v", doc.Scorecard[0].Score)
	}

	if len(doc.Questions) != 3 {
		t.Fatalf("expected 3 question rows, got %d", len(doc.Questions))
	}
	if doc.Questions[0].FollowUp {
		t.Fatalf("first answer must not be marked follow-up")
	}
	if !doc.Questions[1].FollowUp {
		t.Fatalf("second answer for the same question must be marked follow-up")
	}
	if doc.Questions[1].Category != "introduction" {
		t.Fatalf("unexpected category: %q", doc.Questions[1].Category)
	}
	if doc.Questions[2].FollowUp {
		t.Fatalf("fresh question must not be marked follow-up")
	}

	if len(doc.Findings) != 1 || doc.Findings[0].Title != "Strong relevance" {
		t.Fatalf("unexpected findings: %+v", doc.Findings)
	}

	if doc.Gap == nil || doc.Gap.MatchScore != 72 {
		t.Fatalf("unexpected gap: %+v", doc.Gap)
	}

	if len(doc.Transcript) != 2 {
		t.Fatalf("expected 2 transcript lines, got %d", len(doc.Transcript))
	}
	if doc.Transcript[0].Speaker != model.SpeakerInterviewer {
		t.Fatalf("unexpected speaker: %q", doc.Transcript[0].Speaker)
	}
	if doc.Transcript[1].Speaker != model.SpeakerCandidate {
		t.Fatalf("unexpected speaker: %q", doc.Transcript[1].Speaker)
	}

	if err := doc.Validate(); err != nil {
		t.Fatalf("mapped document must validate: %v", err)
	}
}

func TestBuildDocumentExcludesScoringNotes(t *testing.T) {
	doc := buildDocument(sampleFinalReport())
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(raw), "internal-grading-notes") {
		t.Fatalf("chain of thought leaked into document")
	}
}

func TestBuildDocumentSkipsScorecardWithoutAnswers(t *testing.T) {
	rep := sampleFinalReport()
	rep.AnsweredQuestions = 0
	rep.Scores = nil
	rep.AggregateScores = map[string]float64{"relevance": 0, "depth": 0, "competency": 0, "communication": 0}

	doc := buildDocument(rep)
	if doc.Scorecard != nil {
		t.Fatalf("expected no scorecard, got %+v", doc.Scorecard)
	}
	if len(doc.Questions) != 0 {
		t.Fatalf("expected no question rows, got %d", len(doc.Questions))
	}
}

func TestBuildDocumentHandlesMissingExtractions(t *testing.T) {
	rep := sampleFinalReport()
	rep.Candidate = nil
	rep.Role = nil
	rep.Gap = nil
	rep.DurationSeconds = nil

	doc := buildDocument(rep)
	if doc.Header.CandidateName != "" || doc.Header.RoleTitle != "" {
		t.Fatalf("expected empty identity fields, got %+v", doc.Header)
	}
	if doc.Gap != nil {
		t.Fatalf("expected nil gap")
	}
	if doc.Header.Duration != "" {
		t.Fatalf("expected empty duration, got %q", doc.Header.Duration)
	}
}
