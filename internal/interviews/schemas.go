package interviews

import (
	"fmt"
	"strings"

	"interview-backend/internal/llm"
)

// Structured-output contracts for the pipeline and turn stages. The
// instruction text travels in the system prompt; the Validate methods
// are the enforcement side after decoding.

var candidateSchema = llm.Schema{
	Name: "candidate_profile",
	Instructions: `{
  "name": "candidate full name or empty string",
  "skills": ["technical skill", ...],
  "total_experience_years": 5.0,
  "roles": [{"title": "", "company": "", "duration": "", "highlights": ["", ...]}],
  "education": [{"degree": "", "institution": "", "year": "2020"}],
  "projects": ["project one-liner", ...],
  "tools": ["tool or platform", ...],
  "summary": "two sentences at most"
}
All values are strings unless shown otherwise; "year" is a string.`,
}

var roleSchema = llm.Schema{
	Name: "role_requirement",
	Instructions: `{
  "title": "role title",
  "company": "hiring company or empty string",
  "required_skills": ["", ...],
  "preferred_skills": ["", ...],
  "experience_requirement": "e.g. 3+ years backend",
  "education_requirement": "e.g. BSc or equivalent",
  "responsibilities": ["", ...],
  "soft_skills": ["", ...],
  "summary": "two sentences at most"
}`,
}

var gapSchema = llm.Schema{
	Name: "gap_analysis",
	Instructions: `{
  "match_score": 72,
  "matched_skills": ["", ...],
  "missing_skills": ["", ...],
  "experience_gap": "one sentence, empty string if none",
  "education_match": true,
  "strengths": ["", ...],
  "concerns": ["", ...],
  "probe_areas": [{"area": "", "reason": "", "priority": "high"}]
}
match_score is an integer 0-100; priority is exactly one of "high", "medium", "low".`,
}

var questionScriptSchema = llm.Schema{
	Name: "question_script",
	Instructions: `{
  "questions": [
    {"id": 1, "text": "spoken question", "target": "competency or gap it probes",
     "category": "introduction", "rubric_focus": "what a strong answer covers",
     "follow_up_hint": "optional probing angle"}
  ]
}
Between 6 and 8 questions. Categories: introduction, technical, behavioral, situational, competency, closing.`,
}

var answerEvaluationSchema = llm.Schema{
	Name: "answer_evaluation",
	Instructions: `{
  "chain_of_thought": "brief private reasoning",
  "scores": {
    "relevance": {"score": 4, "evidence": "verbatim quote", "reasoning": ""},
    "depth": {"score": 3, "evidence": "", "reasoning": ""},
    "competency": {"score": 4, "evidence": "", "reasoning": ""},
    "communication": {"score": 5, "evidence": "", "reasoning": ""}
  },
  "needs_follow_up": false,
  "follow_up_reason": "required when needs_follow_up is true"
}
Each score is an integer 0-5. Dimensions: relevance (directness in answering the question),
depth (concrete examples, STAR method), competency (specific skill or domain expertise),
communication (clarity, structure, professional delivery).`,
}

var recommendationSchema = llm.Schema{
	Name: "hiring_recommendation",
	Instructions: `{
  "verdict": "RECOMMEND",
  "summary": "3-4 sentences grounded in the scores",
  "strengths": ["", ...],
  "development_areas": ["", ...],
  "confidence": 80
}
verdict is exactly one of RECOMMEND, CONSIDER, DO_NOT_RECOMMEND; confidence is an integer 0-100.`,
}

// questionScript is the decode wrapper for the generation stage.
type questionScript struct {
	Questions []Question `json:"questions"`
}

// Script size bounds.
const (
	minQuestions = 6
	maxQuestions = 8
)

func (q *questionScript) Validate() error {
	if len(q.Questions) < minQuestions || len(q.Questions) > maxQuestions {
		return fmt.Errorf("expected %d-%d questions, got %d", minQuestions, maxQuestions, len(q.Questions))
	}
	for i, question := range q.Questions {
		if strings.TrimSpace(question.Text) == "" {
			return fmt.Errorf("question %d has empty text", i+1)
		}
	}
	return nil
}

// normalize forces 1-based sequential ids and the category frame the
// turn controller depends on, regardless of what the model produced.
func (q *questionScript) normalize() {
	for i := range q.Questions {
		q.Questions[i].ID = i + 1
		q.Questions[i].Text = strings.TrimSpace(q.Questions[i].Text)
		pinCategory(&q.Questions[i], i == 0, i == len(q.Questions)-1)
	}
}

// pinCategory forces the category frame of the first and last question.
func pinCategory(question *Question, first, last bool) {
	switch {
	case first:
		question.Category = "introduction"
	case last:
		question.Category = "closing"
	case strings.TrimSpace(question.Category) == "":
		question.Category = "competency"
	}
}

// answerEvaluation is the decode target of the scoring stage. The turn
// controller hydrates question and answer context after decoding.
type answerEvaluation struct {
	ChainOfThought string       `json:"chain_of_thought"`
	Scores         RubricScores `json:"scores"`
	NeedsFollowUp  bool         `json:"needs_follow_up"`
	FollowUpReason string       `json:"follow_up_reason"`
}

func (a *answerEvaluation) Validate() error {
	for _, d := range []struct {
		name   string
		detail ScoreDetail
	}{
		{"relevance", a.Scores.Relevance},
		{"depth", a.Scores.Depth},
		{"competency", a.Scores.Competency},
		{"communication", a.Scores.Communication},
	} {
		if d.detail.Score < 0 || d.detail.Score > 5 {
			return fmt.Errorf("dimension %s score %d out of range 0-5", d.name, d.detail.Score)
		}
	}
	return nil
}

func (c *CandidateProfile) Validate() error {
	if c.TotalExperienceYears < 0 {
		return fmt.Errorf("total_experience_years %v is negative", c.TotalExperienceYears)
	}
	return nil
}

// normalize cleans up the decoded skill list: blank entries dropped,
// duplicates removed case-insensitively, the model's ordering kept.
func (c *CandidateProfile) normalize() {
	c.Skills = dedupeOrdered(c.Skills)
}

func dedupeOrdered(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := items[:0]
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
	return out
}

func (r *RoleRequirement) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("role title is empty")
	}
	return nil
}

func (g *GapAnalysis) Validate() error {
	if g.MatchScore < 0 || g.MatchScore > 100 {
		return fmt.Errorf("match_score %d out of range 0-100", g.MatchScore)
	}
	for i, p := range g.ProbeAreas {
		switch strings.ToLower(strings.TrimSpace(p.Priority)) {
		case "high", "medium", "low":
		default:
			return fmt.Errorf("probe_areas[%d] priority %q is not high/medium/low", i, p.Priority)
		}
	}
	return nil
}

func (r *Recommendation) Validate() error {
	switch r.Verdict {
	case VerdictRecommend, VerdictConsider, VerdictDoNotRecommend:
	default:
		return fmt.Errorf("verdict %q is not RECOMMEND/CONSIDER/DO_NOT_RECOMMEND", r.Verdict)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("confidence %d out of range 0-100", r.Confidence)
	}
	return nil
}
