package llm

import (
	_ "embed"
	"strings"
)

// Prompt templates for the interview flow. Each builder substitutes the
// {{...}} placeholders of its embedded template and pairs it with the
// right system prompt.

var (
	//go:embed prompts/cv_extract_v1.txt
	cvExtractV1 string
	//go:embed prompts/jd_extract_v1.txt
	jdExtractV1 string
	//go:embed prompts/gap_analysis_v1.txt
	gapAnalysisV1 string
	//go:embed prompts/questions_v1.txt
	questionsV1 string
	//go:embed prompts/score_answer_v1.txt
	scoreAnswerV1 string
	//go:embed prompts/follow_up_v1.txt
	followUpV1 string
	//go:embed prompts/transition_v1.txt
	transitionV1 string
	//go:embed prompts/greeting_v1.txt
	greetingV1 string
	//go:embed prompts/recommendation_v1.txt
	recommendationV1 string
)

const (
	analystSystem = "You are a senior talent analyst. You extract precise, structured facts from hiring documents. Never invent information that is not present in the input."

	interviewerSystem = "You are a warm, professional job interviewer speaking out loud to a candidate. Keep every reply short, natural and conversational. Never mention scores, rubrics or internal analysis."

	scorerSystem = "You are a rigorous interview assessor. You score answers strictly against the rubric and always quote evidence verbatim from the answer."
)

// GenericFollowUpHint is used when a question carries no follow-up hint.
const GenericFollowUpHint = "Ask for a specific example."

// CVExtractionPrompt requests a structured candidate profile from raw resume text.
func CVExtractionPrompt(cvText string) Prompt {
	return Prompt{
		System: analystSystem,
		User:   replace(cvExtractV1, "{{CV_TEXT}}", cvText),
	}
}

// JDExtractionPrompt requests structured role requirements from raw job description text.
func JDExtractionPrompt(jdText string) Prompt {
	return Prompt{
		System: analystSystem,
		User:   replace(jdExtractV1, "{{JD_TEXT}}", jdText),
	}
}

// GapAnalysisPrompt compares a candidate profile against role requirements.
func GapAnalysisPrompt(candidateJSON, roleJSON string) Prompt {
	return Prompt{
		System: analystSystem,
		User: replace(gapAnalysisV1,
			"{{CANDIDATE_JSON}}", candidateJSON,
			"{{ROLE_JSON}}", roleJSON,
		),
	}
}

// QuestionScriptPrompt requests the ordered interview question script.
func QuestionScriptPrompt(gapJSON, roleTitle, highPriorityAreas string) Prompt {
	if strings.TrimSpace(highPriorityAreas) == "" {
		highPriorityAreas = "none flagged"
	}
	return Prompt{
		System: analystSystem,
		User: replace(questionsV1,
			"{{GAP_JSON}}", gapJSON,
			"{{ROLE_TITLE}}", roleTitle,
			"{{HIGH_PRIORITY_AREAS}}", highPriorityAreas,
		),
	}
}

// ScoreAnswerPrompt requests a rubric evaluation of one answer.
func ScoreAnswerPrompt(questionText, category, rubricFocus, answerText string) Prompt {
	if strings.TrimSpace(rubricFocus) == "" {
		rubricFocus = "overall quality of the answer"
	}
	return Prompt{
		System: scorerSystem,
		User: replace(scoreAnswerV1,
			"{{QUESTION_TEXT}}", questionText,
			"{{CATEGORY}}", category,
			"{{RUBRIC_FOCUS}}", rubricFocus,
			"{{ANSWER_TEXT}}", answerText,
		),
	}
}

// FollowUpPrompt synthesizes the single permitted follow-up question.
func FollowUpPrompt(questionText, answerText, hint string) Prompt {
	if strings.TrimSpace(hint) == "" {
		hint = GenericFollowUpHint
	}
	return Prompt{
		System: interviewerSystem,
		User: replace(followUpV1,
			"{{QUESTION_TEXT}}", questionText,
			"{{ANSWER_TEXT}}", answerText,
			"{{HINT}}", hint,
		),
	}
}

// TransitionPrompt acknowledges the previous answer and asks the next question.
func TransitionPrompt(previousAnswer, nextQuestion string) Prompt {
	return Prompt{
		System: interviewerSystem,
		User: replace(transitionV1,
			"{{PREVIOUS_ANSWER}}", previousAnswer,
			"{{NEXT_QUESTION}}", nextQuestion,
		),
	}
}

// GreetingPrompt opens the interview.
func GreetingPrompt(candidateName, roleTitle, firstQuestion string) Prompt {
	if strings.TrimSpace(candidateName) == "" {
		candidateName = "the candidate"
	}
	return Prompt{
		System: interviewerSystem,
		User: replace(greetingV1,
			"{{CANDIDATE_NAME}}", candidateName,
			"{{ROLE_TITLE}}", roleTitle,
			"{{FIRST_QUESTION}}", firstQuestion,
		),
	}
}

// RecommendationPrompt requests the final hiring recommendation.
func RecommendationPrompt(roleTitle, aggregateJSON, scoresJSON string) Prompt {
	return Prompt{
		System: analystSystem,
		User: replace(recommendationV1,
			"{{ROLE_TITLE}}", roleTitle,
			"{{AGGREGATE_JSON}}", aggregateJSON,
			"{{SCORES_JSON}}", scoresJSON,
		),
	}
}

func replace(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}
