package insights

// dimensionOrder keeps dimension insights in rubric order for equal
// severity ties.
var dimensionOrder = []string{"relevance", "depth", "competency", "communication"}

type dimensionText struct {
	lowTitle   string
	midTitle   string
	highTitle  string
	lowDetail  string
	highDetail string
	action     string
}

var dimensionCopy = map[string]dimensionText{
	"relevance": {
		lowTitle:   "Answers consistently missed the question",
		midTitle:   "Answers drifted from the question",
		highTitle:  "Consistently on-topic answers",
		lowDetail:  "Answers did not directly address what was asked",
		highDetail: "Answers stayed tightly focused on what was asked",
		action:     "Probe whether the candidate understood the questions or was avoiding them.",
	},
	"depth": {
		lowTitle:   "Answers lacked concrete examples",
		midTitle:   "Examples stayed at surface level",
		highTitle:  "Strong concrete examples",
		lowDetail:  "Answers stayed abstract with little evidence of hands-on work",
		highDetail: "Answers were grounded in specific situations and results",
		action:     "Ask for one project walked through end to end before deciding.",
	},
	"competency": {
		lowTitle:   "Weak evidence of the target skills",
		midTitle:   "Mixed evidence of the target skills",
		highTitle:  "Clear command of the target skills",
		lowDetail:  "Answers showed limited command of the skills the role needs",
		highDetail: "Answers demonstrated the specific expertise the role needs",
		action:     "Run a practical exercise covering the core skills before an offer.",
	},
	"communication": {
		lowTitle:   "Unclear spoken communication",
		midTitle:   "Communication needs tightening",
		highTitle:  "Clear, structured communication",
		lowDetail:  "Answers were hard to follow or poorly structured",
		highDetail: "Answers were well structured and easy to follow",
		action:     "Consider whether the role demands frequent stakeholder communication.",
	},
}
