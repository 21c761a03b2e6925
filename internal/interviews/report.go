package interviews

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"interview-backend/internal/interviews/insights"
	"interview-backend/internal/llm"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
)

// FinalReport is the hiring report synthesized after an interview. All
// numeric content is recomputed deterministically from the stored score
// history on every call; only the recommendation prose comes from the
// model.
type FinalReport struct {
	SessionID         string             `json:"session_id"`
	GeneratedAt       time.Time          `json:"generated_at"`
	Candidate         *CandidateProfile  `json:"candidate,omitempty"`
	Role              *RoleRequirement   `json:"role,omitempty"`
	Gap               *GapAnalysis       `json:"gap,omitempty"`
	DurationSeconds   *float64           `json:"duration_seconds,omitempty"`
	TotalQuestions    int                `json:"total_questions"`
	AnsweredQuestions int                `json:"answered_questions"`
	AggregateScores   map[string]float64 `json:"aggregate_scores"`
	OverallScore      float64            `json:"overall_score"`
	Scores            []AnswerScore      `json:"scores"`
	Recommendation    Recommendation     `json:"recommendation"`
	Insights          []insights.Insight `json:"insights"`
	Transcript        []TranscriptEntry  `json:"transcript,omitempty"`
	Latencies         []LatencyRecord    `json:"latencies,omitempty"`
	ModelsUsed        []string           `json:"models_used,omitempty"`
}

// AggregateScores computes per-dimension means over a score history,
// rounded to two decimal places. Missing history yields zeroed means.
func AggregateScores(scores []AnswerScore) map[string]float64 {
	agg := map[string]float64{
		"relevance":     0,
		"depth":         0,
		"competency":    0,
		"communication": 0,
	}
	if len(scores) == 0 {
		return agg
	}
	for _, s := range scores {
		agg["relevance"] += float64(s.Rubric.Relevance.Score)
		agg["depth"] += float64(s.Rubric.Depth.Score)
		agg["competency"] += float64(s.Rubric.Competency.Score)
		agg["communication"] += float64(s.Rubric.Communication.Score)
	}
	n := float64(len(scores))
	for k, v := range agg {
		agg[k] = Round2(v / n)
	}
	return agg
}

// OverallScore is the mean of per-answer averages, rounded to two
// decimal places.
func OverallScore(scores []AnswerScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.AverageScore
	}
	return Round2(sum / float64(len(scores)))
}

// answeredQuestions counts distinct scored question ids.
func answeredQuestions(scores []AnswerScore) int {
	seen := make(map[int]bool, len(scores))
	for _, s := range scores {
		seen[s.QuestionID] = true
	}
	return len(seen)
}

// GenerateReport synthesizes the final hiring report for a completed
// interview. Timed-out sessions still report on whatever was scored.
func (s *Service) GenerateReport(ctx context.Context, userID, sessionID string) (FinalReport, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return FinalReport{}, err
	}
	// A report request counts as access: it can trip the wall clock, and
	// the resulting timed-out session is still reportable below.
	s.expireIfTimedOut(ctx, &session)
	if !reportable(session) {
		return FinalReport{}, ErrNotFinished
	}

	began := time.Now()
	aggregates := AggregateScores(session.Scores)
	overall := OverallScore(session.Scores)

	roleTitle := ""
	if session.Role != nil {
		roleTitle = session.Role.Title
	}
	aggregateJSON, err := json.Marshal(map[string]any{
		"dimension_means": aggregates,
		"overall":         overall,
		"answers_scored":  len(session.Scores),
	})
	if err != nil {
		return FinalReport{}, fmt.Errorf("encode aggregates: %w", err)
	}
	scoresJSON, err := json.Marshal(session.Scores)
	if err != nil {
		return FinalReport{}, fmt.Errorf("encode scores: %w", err)
	}

	var recommendation Recommendation
	res, err := s.Gateway.GenerateStructured(ctx,
		llm.RecommendationPrompt(roleTitle, string(aggregateJSON), string(scoresJSON)),
		recommendationSchema, &recommendation)
	if err != nil {
		return FinalReport{}, fmt.Errorf("recommendation: %w", err)
	}
	session.RecordModel(res.Model)
	session.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, session); err != nil {
		telemetry.Warn("report.models_persist_failed", map[string]any{
			"interview_id": sessionID,
			"error":        err.Error(),
		})
	}

	report := FinalReport{
		SessionID:         session.ID,
		GeneratedAt:       time.Now().UTC(),
		Candidate:         session.Candidate,
		Role:              session.Role,
		Gap:               session.Gap,
		DurationSeconds:   sessionDuration(session),
		TotalQuestions:    len(session.Questions),
		AnsweredQuestions: answeredQuestions(session.Scores),
		AggregateScores:   aggregates,
		OverallScore:      overall,
		Scores:            session.Scores,
		Recommendation:    recommendation,
		Insights:          s.deriveInsights(session, aggregates, overall),
		Transcript:        session.Transcript,
		Latencies:         session.Latencies,
		ModelsUsed:        session.ModelsUsed,
	}

	metrics.IncReportBuilt()
	telemetry.Info("report.generated", map[string]any{
		"request_id":     requestIDFromContext(ctx),
		"interview_id":   sessionID,
		"user_id":        session.UserID,
		"verdict":        recommendation.Verdict,
		"overall":        overall,
		"answers_scored": len(session.Scores),
		"duration_ms":    durationMs(began, time.Now()),
	})
	return report, nil
}

// reportable allows completed sessions plus timed-out ones, which keep
// whatever score history the interview accumulated.
func reportable(session Session) bool {
	if session.Status == StatusCompleted {
		return true
	}
	return session.Status == StatusError && session.ErrorCode == ErrorCodeTimeout
}

func sessionDuration(session Session) *float64 {
	if session.StartedAt == nil {
		return nil
	}
	end := session.CompletedAt
	if end == nil {
		end = &session.UpdatedAt
	}
	secs := end.Sub(*session.StartedAt).Seconds()
	return &secs
}

func (s *Service) deriveInsights(session Session, aggregates map[string]float64, overall float64) []insights.Insight {
	in := insights.Input{
		Aggregates:     aggregates,
		Overall:        overall,
		AnswerCount:    len(session.Scores),
		TotalQuestions: len(session.Questions),
	}
	if session.Gap != nil {
		in.MissingSkills = session.Gap.MissingSkills
		in.Concerns = session.Gap.Concerns
		in.Strengths = session.Gap.Strengths
	}
	return insights.Derive(in)
}
