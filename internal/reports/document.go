package reports

import (
	"time"

	"interview-backend/internal/interviews"
	"interview-backend/report/model"
)

var scorecardDimensions = []struct {
	key   string
	label string
}{
	{"relevance", "Relevance"},
	{"depth", "Depth"},
	{"competency", "Competency"},
	{"communication", "Communication"},
}

// buildDocument converts a final report into its renderable form. The
// per-answer chain of thought stays behind; the document carries only
// what the delivered artifact shows.
func buildDocument(rep interviews.FinalReport) model.Document {
	doc := model.Document{
		Header: model.Header{
			GeneratedAt:       rep.GeneratedAt.Format(model.DateLayout),
			Verdict:           rep.Recommendation.Verdict,
			Confidence:        rep.Recommendation.Confidence,
			OverallScore:      rep.OverallScore,
			AnsweredQuestions: rep.AnsweredQuestions,
			TotalQuestions:    rep.TotalQuestions,
		},
		Summary:          rep.Recommendation.Summary,
		Strengths:        rep.Recommendation.Strengths,
		DevelopmentAreas: rep.Recommendation.DevelopmentAreas,
	}

	if rep.Candidate != nil {
		doc.Header.CandidateName = rep.Candidate.Name
	}
	if rep.Role != nil {
		doc.Header.RoleTitle = rep.Role.Title
		doc.Header.Company = rep.Role.Company
	}
	if rep.DurationSeconds != nil {
		doc.Header.Duration = formatDuration(*rep.DurationSeconds)
	}

	if rep.AnsweredQuestions > 0 {
		doc.Scorecard = make([]model.DimensionScore, 0, len(scorecardDimensions))
		for _, dim := range scorecardDimensions {
			doc.Scorecard = append(doc.Scorecard, model.DimensionScore{
				Dimension: dim.key,
				Label:     dim.label,
				Score:     rep.AggregateScores[dim.key],
			})
		}
	}

	doc.Questions = buildQuestionResults(rep)

	for _, insight := range rep.Insights {
		doc.Findings = append(doc.Findings, model.Finding{
			Severity: insight.Severity,
			Kind:     insight.Kind,
			Title:    insight.Title,
			Detail:   insight.Detail,
		})
	}

	if rep.Gap != nil {
		doc.Gap = &model.GapSummary{
			MatchScore:    rep.Gap.MatchScore,
			MissingSkills: rep.Gap.MissingSkills,
			Strengths:     rep.Gap.Strengths,
			Concerns:      rep.Gap.Concerns,
		}
	}

	for _, entry := range rep.Transcript {
		speaker := model.SpeakerInterviewer
		if entry.Role == interviews.RoleCandidate {
			speaker = model.SpeakerCandidate
		}
		doc.Transcript = append(doc.Transcript, model.TranscriptLine{
			Speaker: speaker,
			Text:    entry.Text,
		})
	}

	return doc
}

// buildQuestionResults maps score history to question rows. A second
// score for the same question id is the follow-up answer.
func buildQuestionResults(rep interviews.FinalReport) []model.QuestionResult {
	seen := make(map[int]bool, len(rep.Scores))
	out := make([]model.QuestionResult, 0, len(rep.Scores))
	for _, score := range rep.Scores {
		out = append(out, model.QuestionResult{
			Number:   score.QuestionID,
			Category: score.Category,
			Question: score.QuestionText,
			Answer:   score.AnswerText,
			Score:    score.AverageScore,
			FollowUp: seen[score.QuestionID],
		})
		seen[score.QuestionID] = true
	}
	return out
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return d.Round(time.Second).String()
}
