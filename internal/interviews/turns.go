package interviews

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"interview-backend/internal/llm"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/speech"
)

// SentinelUtterance stands in for an inaudible or empty candidate turn.
// It flows through the turn controller without being scored.
const SentinelUtterance = "..."

// closingUtterance ends every completed interview.
const closingUtterance = "Thank you for your time. The interview is now complete."

// followUpThreshold is the average score below which a weak answer may
// earn its single follow-up.
const followUpThreshold = 3.0

// TurnResult is what one processed turn hands back to the caller.
type TurnResult struct {
	Reply    string
	Done     bool
	FollowUp bool
	Score    *AnswerScore
	AudioB64 string
}

// Start moves a ready session into interviewing and produces the
// greeting that asks the first question. The session stays ready if
// greeting generation fails, so the call can be retried.
func (s *Service) Start(ctx context.Context, userID, sessionID string) (TurnResult, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	if session.Status != StatusReady {
		return TurnResult{}, ErrNotReady
	}
	first, ok := session.CurrentQuestion()
	if !ok {
		return TurnResult{}, fmt.Errorf("session %s has no questions", sessionID)
	}

	candidateName := ""
	if session.Candidate != nil {
		candidateName = session.Candidate.Name
	}
	roleTitle := ""
	if session.Role != nil {
		roleTitle = session.Role.Title
	}

	began := time.Now()
	res, err := s.Gateway.Generate(ctx, llm.GreetingPrompt(candidateName, roleTitle, first.Text))
	if err != nil {
		return TurnResult{}, fmt.Errorf("greeting: %w", err)
	}

	now := time.Now().UTC()
	session.Status = StatusInterviewing
	session.StartedAt = &now
	session.RecordModel(res.Model)
	session.Transcript = append(session.Transcript, TranscriptEntry{
		Role: RoleInterviewer, Text: res.Text, Timestamp: now,
	})
	session.Latencies = append(session.Latencies, LatencyRecord{
		Turn: 0, Stage: "greeting", Ms: durationMs(began, time.Now()),
	})
	session.UpdatedAt = now
	if err := s.Repo.Update(ctx, session); err != nil {
		return TurnResult{}, err
	}

	telemetry.Info("interview.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"interview_id":      sessionID,
		"user_id":           session.UserID,
		"status":            StatusInterviewing,
		"status_transition": "ready->interviewing",
	})

	return TurnResult{
		Reply:    res.Text,
		AudioB64: s.synthesize(ctx, sessionID, res.Text),
	}, nil
}

// ProcessTurn handles one candidate utterance: score it, decide on the
// single follow-up, otherwise advance to the next question or close the
// interview. Scoring failures never block the interview; the turn
// simply proceeds without a score.
func (s *Service) ProcessTurn(ctx context.Context, userID, sessionID, utterance string) (TurnResult, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	if s.expireIfTimedOut(ctx, &session) {
		return TurnResult{}, ErrTimedOut
	}
	if session.Status != StatusInterviewing {
		return TurnResult{}, ErrNotRunning
	}
	question, ok := session.CurrentQuestion()
	if !ok {
		return TurnResult{}, ErrNotRunning
	}

	turn := session.candidateTurns() + 1
	now := time.Now().UTC()

	var scored *AnswerScore
	askFollowUp := false
	if utterance != "" && utterance != SentinelUtterance {
		scored = s.scoreAnswer(ctx, &session, question, utterance, turn)
		if scored != nil {
			session.Scores = append(session.Scores, *scored)
			askFollowUp = scored.AverageScore < followUpThreshold &&
				scored.NeedsFollowUp && !session.FollowedUp[question.ID]
			if askFollowUp {
				// The mark persists together with the score: a retried
				// turn after a failed follow-up generation must not
				// trigger a second follow-up for this question.
				session.MarkFollowedUp(question.ID)
			}
			session.UpdatedAt = time.Now().UTC()
			if err := s.Repo.Update(ctx, session); err != nil {
				return TurnResult{}, err
			}
		}
	}

	result := TurnResult{Score: scored}
	replyStart := time.Now()

	switch {
	case askFollowUp:
		// The one permitted follow-up: cursor stays put.
		res, err := s.Gateway.Generate(ctx, llm.FollowUpPrompt(question.Text, utterance, question.FollowUpHint))
		if err != nil {
			return TurnResult{}, fmt.Errorf("follow-up: %w", err)
		}
		session.RecordModel(res.Model)
		result.Reply = res.Text
		result.FollowUp = true
		metrics.IncFollowUpAsked()

	default:
		session.Cursor++
		if next, ok := session.CurrentQuestion(); ok {
			res, err := s.Gateway.Generate(ctx, llm.TransitionPrompt(utterance, next.Text))
			if err != nil {
				return TurnResult{}, fmt.Errorf("transition: %w", err)
			}
			session.RecordModel(res.Model)
			result.Reply = res.Text
		} else {
			if !CanTransition(session.Status, StatusCompleted) {
				return TurnResult{}, ErrNotRunning
			}
			completedAt := time.Now().UTC()
			session.Status = StatusCompleted
			session.CompletedAt = &completedAt
			result.Reply = closingUtterance
			result.Done = true
			telemetry.Info("interview.status", map[string]any{
				"request_id":        requestIDFromContext(ctx),
				"interview_id":      sessionID,
				"user_id":           session.UserID,
				"status":            StatusCompleted,
				"status_transition": "interviewing->completed",
				"answers_scored":    len(session.Scores),
			})
		}
	}

	session.Transcript = append(session.Transcript,
		TranscriptEntry{Role: RoleCandidate, Text: utterance, Timestamp: now},
		TranscriptEntry{Role: RoleInterviewer, Text: result.Reply, Timestamp: time.Now().UTC()},
	)
	session.Latencies = append(session.Latencies, LatencyRecord{
		Turn: turn, Stage: "reply", Ms: durationMs(replyStart, time.Now()),
	})
	session.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, session); err != nil {
		return TurnResult{}, err
	}

	metrics.IncTurnProcessed()
	result.AudioB64 = s.synthesize(ctx, sessionID, result.Reply)
	return result, nil
}

// scoreAnswer runs the structured rubric evaluation for one answer.
// Every failure is logged and swallowed: a lost score must not stall
// the conversation.
func (s *Service) scoreAnswer(ctx context.Context, session *Session, question Question, utterance string, turn int) *AnswerScore {
	began := time.Now()
	var eval answerEvaluation
	res, err := s.Gateway.GenerateStructured(ctx,
		llm.ScoreAnswerPrompt(question.Text, question.Category, question.RubricFocus, utterance),
		answerEvaluationSchema, &eval)
	elapsed := durationMs(began, time.Now())
	session.Latencies = append(session.Latencies, LatencyRecord{Turn: turn, Stage: "score", Ms: elapsed})
	if err != nil {
		telemetry.Error("turn.score_failed", map[string]any{
			"request_id":   requestIDFromContext(ctx),
			"interview_id": session.ID,
			"question_id":  question.ID,
			"duration_ms":  elapsed,
			"error":        err.Error(),
		})
		return nil
	}
	session.RecordModel(res.Model)
	return &AnswerScore{
		QuestionID:     question.ID,
		QuestionText:   question.Text,
		Category:       question.Category,
		AnswerText:     utterance,
		ChainOfThought: eval.ChainOfThought,
		Rubric:         eval.Scores,
		AverageScore:   eval.Scores.Average(),
		NeedsFollowUp:  eval.NeedsFollowUp,
		FollowUpReason: eval.FollowUpReason,
	}
}

// synthesize renders reply audio when a synthesizer is configured.
// Failures degrade to a text-only turn.
func (s *Service) synthesize(ctx context.Context, sessionID, text string) string {
	if s.Synth == nil || text == "" {
		return ""
	}
	audio, err := s.Synth.Synthesize(ctx, text)
	if err != nil {
		if !errors.Is(err, speech.ErrDisabled) {
			telemetry.Warn("turn.tts_failed", map[string]any{
				"interview_id": sessionID,
				"error":        err.Error(),
			})
		}
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}
