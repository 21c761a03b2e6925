package model

import (
	"strings"
	"testing"
)

func validDocument() Document {
	return Document{
		Header: Header{
			CandidateName:     "Ada Lovelace",
			RoleTitle:         "Senior Backend Engineer",
			Company:           "Example Corp",
			GeneratedAt:       "2026-03-14",
			Verdict:           VerdictConsider,
			Confidence:        70,
			OverallScore:      3.75,
			AnsweredQuestions: 4,
			TotalQuestions:    6,
		},
		Summary: "Solid backend depth, needs cloud exposure.",
		Scorecard: []DimensionScore{
			{Dimension: "relevance", Label: "Relevance", Score: 4.5},
			{Dimension: "depth", Label: "Depth", Score: 3.5},
		},
		Questions: []QuestionResult{
			{Number: 1, Category: "introduction", Question: "Tell me about yourself.", Answer: "I build services.", Score: 4},
		},
		Gap: &GapSummary{MatchScore: 72, MissingSkills: []string{"AWS"}},
		Transcript: []TranscriptLine{
			{Speaker: SpeakerInterviewer, Text: "Welcome."},
			{Speaker: SpeakerCandidate, Text: "Thanks."},
		},
	}
}

func TestValidateAcceptsCompleteDocument(t *testing.T) {
	if err := validDocument().Validate(); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
}

func TestValidateRequiredHeaderFields(t *testing.T) {
	doc := validDocument()
	doc.Header.RoleTitle = ""
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for missing role title")
	}

	doc = validDocument()
	doc.Header.GeneratedAt = ""
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for missing date")
	}

	doc = validDocument()
	doc.Header.GeneratedAt = "March 14, 2026"
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestValidateRejectsUnknownVerdict(t *testing.T) {
	doc := validDocument()
	doc.Header.Verdict = "MAYBE"
	err := doc.Validate()
	if err == nil {
		t.Fatalf("expected error for unknown verdict")
	}
	if !strings.Contains(err.Error(), "MAYBE") {
		t.Fatalf("expected verdict in error, got %v", err)
	}
}

func TestValidateScoreRanges(t *testing.T) {
	doc := validDocument()
	doc.Header.OverallScore = 5.5
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for overall score above 5")
	}

	doc = validDocument()
	doc.Scorecard[0].Score = -0.5
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for negative scorecard score")
	}

	doc = validDocument()
	doc.Questions[0].Score = 6
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for question score above 5")
	}

	doc = validDocument()
	doc.Header.Confidence = 101
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for confidence above 100")
	}

	doc = validDocument()
	doc.Gap.MatchScore = 120
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for match score above 100")
	}
}

func TestValidateQuestionCounts(t *testing.T) {
	doc := validDocument()
	doc.Header.AnsweredQuestions = 8
	doc.Header.TotalQuestions = 6
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error when answered exceeds total")
	}
}

func TestValidateScorecardDuplicates(t *testing.T) {
	doc := validDocument()
	doc.Scorecard = append(doc.Scorecard, DimensionScore{Dimension: "relevance", Label: "Relevance", Score: 4})
	err := doc.Validate()
	if err == nil {
		t.Fatalf("expected error for duplicate dimension")
	}
	if !strings.Contains(err.Error(), "relevance") {
		t.Fatalf("expected dimension in error, got %v", err)
	}
}

func TestValidateQuestionNumbers(t *testing.T) {
	doc := validDocument()
	doc.Questions[0].Number = 0
	if err := doc.Validate(); err == nil {
		t.Fatalf("expected error for non-positive question number")
	}
}

func TestValidateTranscriptSpeakers(t *testing.T) {
	doc := validDocument()
	doc.Transcript = append(doc.Transcript, TranscriptLine{Speaker: "narrator", Text: "Meanwhile."})
	err := doc.Validate()
	if err == nil {
		t.Fatalf("expected error for unknown speaker")
	}
	if !strings.Contains(err.Error(), "narrator") {
		t.Fatalf("expected speaker in error, got %v", err)
	}
}

func TestValidateAllowsOptionalSectionsAbsent(t *testing.T) {
	doc := Document{
		Header: Header{
			RoleTitle:      "Platform Engineer",
			GeneratedAt:    "2026-01-02",
			Verdict:        VerdictDoNotRecommend,
			TotalQuestions: 6,
		},
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("expected minimal document to validate, got %v", err)
	}
}
