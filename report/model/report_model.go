package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar format used for the report header date.
const DateLayout = "2006-01-02"

// Verdict values a report may carry.
const (
	VerdictRecommend      = "RECOMMEND"
	VerdictConsider       = "CONSIDER"
	VerdictDoNotRecommend = "DO_NOT_RECOMMEND"
)

// Transcript speaker labels.
const (
	SpeakerCandidate   = "Candidate"
	SpeakerInterviewer = "Interviewer"
)

// Document is the canonical renderable form of a hiring report. It carries
// only what the rendered artifact shows; scoring rationale that stays
// internal to the interview never enters a Document.
type Document struct {
	Header           Header           `json:"header"`
	Summary          string           `json:"summary"`
	Strengths        []string         `json:"strengths"`
	DevelopmentAreas []string         `json:"developmentAreas"`
	Scorecard        []DimensionScore `json:"scorecard"`
	Questions        []QuestionResult `json:"questions"`
	Findings         []Finding        `json:"findings"`
	Gap              *GapSummary      `json:"gap,omitempty"`
	Transcript       []TranscriptLine `json:"transcript,omitempty"`
}

// Validate enforces required fields and value ranges for Document.
func (d Document) Validate() error {
	if d.Header.RoleTitle == "" {
		return errors.New("header.roleTitle is required")
	}
	if d.Header.GeneratedAt == "" {
		return errors.New("header.generatedAt is required")
	}
	if _, err := time.Parse(DateLayout, d.Header.GeneratedAt); err != nil {
		return fmt.Errorf("header.generatedAt must use %s format", DateLayout)
	}
	switch d.Header.Verdict {
	case VerdictRecommend, VerdictConsider, VerdictDoNotRecommend:
	default:
		return fmt.Errorf("header.verdict %q is not a known verdict", d.Header.Verdict)
	}
	if d.Header.Confidence < 0 || d.Header.Confidence > 100 {
		return fmt.Errorf("header.confidence %d out of range [0,100]", d.Header.Confidence)
	}
	if err := validateScore(d.Header.OverallScore, "header.overallScore"); err != nil {
		return err
	}
	if d.Header.AnsweredQuestions < 0 || d.Header.TotalQuestions < 0 {
		return errors.New("question counts must not be negative")
	}
	if d.Header.AnsweredQuestions > d.Header.TotalQuestions {
		return fmt.Errorf("answered %d exceeds total %d", d.Header.AnsweredQuestions, d.Header.TotalQuestions)
	}

	seen := make(map[string]struct{}, len(d.Scorecard))
	for i, row := range d.Scorecard {
		if row.Dimension == "" {
			return fmt.Errorf("scorecard[%d].dimension is required", i)
		}
		if _, dup := seen[row.Dimension]; dup {
			return fmt.Errorf("scorecard[%d] repeats dimension %q", i, row.Dimension)
		}
		seen[row.Dimension] = struct{}{}
		if err := validateScore(row.Score, fmt.Sprintf("scorecard[%d].score", i)); err != nil {
			return err
		}
	}

	for i, q := range d.Questions {
		if q.Number <= 0 {
			return fmt.Errorf("questions[%d].number must be positive", i)
		}
		if err := validateScore(q.Score, fmt.Sprintf("questions[%d].score", i)); err != nil {
			return err
		}
	}

	if d.Gap != nil && (d.Gap.MatchScore < 0 || d.Gap.MatchScore > 100) {
		return fmt.Errorf("gap.matchScore %d out of range [0,100]", d.Gap.MatchScore)
	}

	for i, line := range d.Transcript {
		if line.Speaker != SpeakerCandidate && line.Speaker != SpeakerInterviewer {
			return fmt.Errorf("transcript[%d].speaker %q is not a known speaker", i, line.Speaker)
		}
	}
	return nil
}

func validateScore(v float64, field string) error {
	if v < 0 || v > 5 {
		return fmt.Errorf("%s %.2f out of range [0,5]", field, v)
	}
	return nil
}

// Header captures the identity and outcome summary shown at the top of
// the report.
type Header struct {
	CandidateName     string  `json:"candidateName"`
	RoleTitle         string  `json:"roleTitle"`
	Company           string  `json:"company,omitempty"`
	GeneratedAt       string  `json:"generatedAt"`
	Verdict           string  `json:"verdict"`
	Confidence        int     `json:"confidence"`
	OverallScore      float64 `json:"overallScore"`
	AnsweredQuestions int     `json:"answeredQuestions"`
	TotalQuestions    int     `json:"totalQuestions"`
	Duration          string  `json:"duration,omitempty"`
}

// DimensionScore is one row of the rubric scorecard.
type DimensionScore struct {
	Dimension string  `json:"dimension"`
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
}

// QuestionResult pairs a scored question with the candidate's answer.
type QuestionResult struct {
	Number   int     `json:"number"`
	Category string  `json:"category,omitempty"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
	FollowUp bool    `json:"followUp,omitempty"`
}

// Finding is one derived observation about the interview.
type Finding struct {
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
}

// GapSummary condenses the resume-to-role comparison.
type GapSummary struct {
	MatchScore    int      `json:"matchScore"`
	MissingSkills []string `json:"missingSkills,omitempty"`
	Strengths     []string `json:"strengths,omitempty"`
	Concerns      []string `json:"concerns,omitempty"`
}

// TranscriptLine is one spoken line in the report appendix.
type TranscriptLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}
