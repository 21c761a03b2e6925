package insights

// Insight is one deterministic observation about interview performance,
// derived from scores and gap data without any model involvement.
type Insight struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Dimension string `json:"dimension,omitempty"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	Action    string `json:"action,omitempty"`
	Order     int    `json:"order"`
}

// Insight kinds.
const (
	KindStrength    = "strength"
	KindDevelopment = "development"
)

// Input is the aggregate material insights derive from.
type Input struct {
	// Aggregates maps rubric dimension to its mean score (0-5).
	Aggregates map[string]float64
	// Overall is the mean of per-answer averages.
	Overall float64
	// AnswerCount is how many answers were scored.
	AnswerCount int
	// TotalQuestions is the scripted question count.
	TotalQuestions int
	// MissingSkills and Concerns come from the gap analysis.
	MissingSkills []string
	Concerns      []string
	// Strengths come from the gap analysis.
	Strengths []string
}
