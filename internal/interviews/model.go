package interviews

import (
	"math"
	"time"
)

// Session statuses. Movement is strictly forward; error is reachable
// from every non-terminal status.
const (
	StatusIdle         = "idle"
	StatusSetup        = "setup"
	StatusReady        = "ready"
	StatusInterviewing = "interviewing"
	StatusCompleted    = "completed"
	StatusError        = "error"
)

var statusRank = map[string]int{
	StatusIdle:         0,
	StatusSetup:        1,
	StatusReady:        2,
	StatusInterviewing: 3,
	StatusCompleted:    4,
}

// CanTransition reports whether a session may move from one status to
// the next. Only single forward steps are allowed; completed and error
// are terminal.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	if to == StatusError {
		return from != StatusCompleted && from != StatusError
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// RoleStint is one position in a candidate's history.
type RoleStint struct {
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Duration   string   `json:"duration"`
	Highlights []string `json:"highlights"`
}

// Education is one entry of a candidate's education history.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// CandidateProfile is the structured extraction of a resume.
type CandidateProfile struct {
	Name                 string      `json:"name"`
	Skills               []string    `json:"skills"`
	TotalExperienceYears float64     `json:"total_experience_years"`
	Roles                []RoleStint `json:"roles"`
	Education            []Education `json:"education"`
	Projects             []string    `json:"projects"`
	Tools                []string    `json:"tools"`
	Summary              string      `json:"summary"`
}

// RoleRequirement is the structured extraction of a job description.
type RoleRequirement struct {
	Title                 string   `json:"title"`
	Company               string   `json:"company"`
	RequiredSkills        []string `json:"required_skills"`
	PreferredSkills       []string `json:"preferred_skills"`
	ExperienceRequirement string   `json:"experience_requirement"`
	EducationRequirement  string   `json:"education_requirement"`
	Responsibilities      []string `json:"responsibilities"`
	SoftSkills            []string `json:"soft_skills"`
	Summary               string   `json:"summary"`
}

// ProbeArea flags something the interview should verify.
type ProbeArea struct {
	Area     string `json:"area"`
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// GapAnalysis compares a candidate profile against role requirements.
type GapAnalysis struct {
	MatchScore     int         `json:"match_score"`
	MatchedSkills  []string    `json:"matched_skills"`
	MissingSkills  []string    `json:"missing_skills"`
	ExperienceGap  string      `json:"experience_gap"`
	EducationMatch bool        `json:"education_match"`
	Strengths      []string    `json:"strengths"`
	Concerns       []string    `json:"concerns"`
	ProbeAreas     []ProbeArea `json:"probe_areas"`
}

// HighPriorityAreas returns the names of probe areas flagged high.
func (g GapAnalysis) HighPriorityAreas() []string {
	var out []string
	for _, p := range g.ProbeAreas {
		if p.Priority == "high" {
			out = append(out, p.Area)
		}
	}
	return out
}

// Question is one scripted interview question.
type Question struct {
	ID           int    `json:"id"`
	Text         string `json:"text"`
	Target       string `json:"target"`
	Category     string `json:"category"`
	RubricFocus  string `json:"rubric_focus"`
	FollowUpHint string `json:"follow_up_hint,omitempty"`
}

// ScoreDetail is one rubric dimension's evaluation.
type ScoreDetail struct {
	Score     int    `json:"score"`
	Evidence  string `json:"evidence"`
	Reasoning string `json:"reasoning"`
}

// RubricScores holds the four fixed scoring dimensions.
type RubricScores struct {
	Relevance     ScoreDetail `json:"relevance"`
	Depth         ScoreDetail `json:"depth"`
	Competency    ScoreDetail `json:"competency"`
	Communication ScoreDetail `json:"communication"`
}

// Average returns the mean of the four dimensions rounded to two
// decimal places.
func (r RubricScores) Average() float64 {
	sum := float64(r.Relevance.Score + r.Depth.Score + r.Competency.Score + r.Communication.Score)
	return Round2(sum / 4)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AnswerScore is the stored evaluation of one candidate answer.
type AnswerScore struct {
	QuestionID     int          `json:"question_id"`
	QuestionText   string       `json:"question_text"`
	Category       string       `json:"category,omitempty"`
	AnswerText     string       `json:"answer_text"`
	ChainOfThought string       `json:"chain_of_thought,omitempty"`
	Rubric         RubricScores `json:"scores"`
	AverageScore   float64      `json:"average_score"`
	NeedsFollowUp  bool         `json:"needs_follow_up"`
	FollowUpReason string       `json:"follow_up_reason,omitempty"`
}

// TranscriptEntry is one spoken line of the interview.
type TranscriptEntry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// LatencyRecord captures how long one processing stage of a turn took.
type LatencyRecord struct {
	Turn  int     `json:"turn"`
	Stage string  `json:"stage"`
	Ms    float64 `json:"ms"`
}

// Recommendation verdicts.
const (
	VerdictRecommend      = "RECOMMEND"
	VerdictConsider       = "CONSIDER"
	VerdictDoNotRecommend = "DO_NOT_RECOMMEND"
)

// Recommendation is the model-authored hiring recommendation.
type Recommendation struct {
	Verdict          string   `json:"verdict"`
	Summary          string   `json:"summary"`
	Strengths        []string `json:"strengths"`
	DevelopmentAreas []string `json:"development_areas"`
	Confidence       int      `json:"confidence"`
}

// Session is one interview from setup through report. The whole value
// is persisted as a unit; repos never mutate it partially.
type Session struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Status       string `json:"status"`
	CVText       string `json:"cv_text,omitempty"`
	JDText       string `json:"jd_text,omitempty"`
	CVDocumentID string `json:"cv_document_id,omitempty"`
	JDDocumentID string `json:"jd_document_id,omitempty"`

	Candidate *CandidateProfile `json:"candidate,omitempty"`
	Role      *RoleRequirement  `json:"role,omitempty"`
	Gap       *GapAnalysis      `json:"gap,omitempty"`
	Questions []Question        `json:"questions,omitempty"`

	Cursor     int               `json:"cursor"`
	Scores     []AnswerScore     `json:"scores,omitempty"`
	FollowedUp map[int]bool      `json:"followed_up,omitempty"`
	Transcript []TranscriptEntry `json:"transcript,omitempty"`
	Latencies  []LatencyRecord   `json:"latencies,omitempty"`
	ModelsUsed []string          `json:"models_used,omitempty"`

	FailedStage  string `json:"failed_stage,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CurrentQuestion returns the question at the cursor, or false when the
// cursor has moved past the script.
func (s *Session) CurrentQuestion() (Question, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Cursor], true
}

// MarkFollowedUp records that a question consumed its single follow-up.
func (s *Session) MarkFollowedUp(questionID int) {
	if s.FollowedUp == nil {
		s.FollowedUp = make(map[int]bool)
	}
	s.FollowedUp[questionID] = true
}

// RecordModel appends a model identifier if not already tracked.
func (s *Session) RecordModel(model string) {
	if model == "" {
		return
	}
	for _, m := range s.ModelsUsed {
		if m == model {
			return
		}
	}
	s.ModelsUsed = append(s.ModelsUsed, model)
}

// candidateTurns counts how many candidate lines the transcript holds.
func (s *Session) candidateTurns() int {
	n := 0
	for _, e := range s.Transcript {
		if e.Role == RoleCandidate {
			n++
		}
	}
	return n
}

// Transcript roles.
const (
	RoleCandidate   = "candidate"
	RoleInterviewer = "assistant"
)

// cloneSession deep-copies a session so repo callers never share
// backing arrays with stored state.
func cloneSession(s Session) Session {
	out := s
	if s.Candidate != nil {
		c := *s.Candidate
		c.Skills = append([]string(nil), s.Candidate.Skills...)
		c.Roles = append([]RoleStint(nil), s.Candidate.Roles...)
		for i := range c.Roles {
			c.Roles[i].Highlights = append([]string(nil), c.Roles[i].Highlights...)
		}
		c.Education = append([]Education(nil), s.Candidate.Education...)
		c.Projects = append([]string(nil), s.Candidate.Projects...)
		c.Tools = append([]string(nil), s.Candidate.Tools...)
		out.Candidate = &c
	}
	if s.Role != nil {
		r := *s.Role
		r.RequiredSkills = append([]string(nil), s.Role.RequiredSkills...)
		r.PreferredSkills = append([]string(nil), s.Role.PreferredSkills...)
		r.Responsibilities = append([]string(nil), s.Role.Responsibilities...)
		r.SoftSkills = append([]string(nil), s.Role.SoftSkills...)
		out.Role = &r
	}
	if s.Gap != nil {
		g := *s.Gap
		g.MatchedSkills = append([]string(nil), s.Gap.MatchedSkills...)
		g.MissingSkills = append([]string(nil), s.Gap.MissingSkills...)
		g.Strengths = append([]string(nil), s.Gap.Strengths...)
		g.Concerns = append([]string(nil), s.Gap.Concerns...)
		g.ProbeAreas = append([]ProbeArea(nil), s.Gap.ProbeAreas...)
		out.Gap = &g
	}
	out.Questions = append([]Question(nil), s.Questions...)
	out.Scores = append([]AnswerScore(nil), s.Scores...)
	out.Transcript = append([]TranscriptEntry(nil), s.Transcript...)
	out.Latencies = append([]LatencyRecord(nil), s.Latencies...)
	out.ModelsUsed = append([]string(nil), s.ModelsUsed...)
	if s.FollowedUp != nil {
		out.FollowedUp = make(map[int]bool, len(s.FollowedUp))
		for k, v := range s.FollowedUp {
			out.FollowedUp[k] = v
		}
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
