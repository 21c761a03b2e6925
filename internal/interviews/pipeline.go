package interviews

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"interview-backend/internal/llm"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
)

// Pipeline stage names, recorded on the session when a stage fails.
const (
	StageInputs      = "inputs"
	StageProfiles    = "profiles"
	StageGapAnalysis = "gap_analysis"
	StageQuestions   = "questions"
)

// ProcessInterview runs the setup pipeline for one session. It is the
// worker-facing entrypoint and recovers panics into a failed session
// rather than a dead consumer.
func (s *Service) ProcessInterview(ctx context.Context, sessionID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr := fmt.Errorf("panic: %v", r)
			s.failSession(ctx, sessionID, "pipeline", perr)
			err = perr
		}
	}()
	return s.runPipeline(ctx, sessionID)
}

// runPipeline executes the three analysis stages and marks the session
// ready. Each stage persists its output before the next starts.
func (s *Service) runPipeline(ctx context.Context, sessionID string) error {
	session, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		s.failSession(ctx, sessionID, StageInputs, fmt.Errorf("session lookup: %w", err))
		return err
	}
	if session.Status != StatusSetup {
		// Redelivered queue message for a session that already ran.
		telemetry.Info("interview.pipeline_skipped", map[string]any{
			"request_id":   requestIDFromContext(ctx),
			"interview_id": sessionID,
			"status":       session.Status,
		})
		return nil
	}

	startedAt := time.Now().UTC()
	metrics.IncPipelineStarted()
	telemetry.Info("interview.pipeline_started", map[string]any{
		"request_id":   requestIDFromContext(ctx),
		"interview_id": sessionID,
		"user_id":      session.UserID,
	})

	if err := s.resolveInputs(ctx, &session); err != nil {
		s.failSession(ctx, sessionID, StageInputs, err)
		return &StageError{Stage: StageInputs, Err: err}
	}
	session.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, session); err != nil {
		s.failSession(ctx, sessionID, StageInputs, fmt.Errorf("persist inputs: %w", err))
		return &StageError{Stage: StageInputs, Err: err}
	}

	if err := s.stageProfiles(ctx, &session); err != nil {
		s.failSession(ctx, sessionID, StageProfiles, err)
		return &StageError{Stage: StageProfiles, Err: err}
	}
	if err := s.stageGapAnalysis(ctx, &session); err != nil {
		s.failSession(ctx, sessionID, StageGapAnalysis, err)
		return &StageError{Stage: StageGapAnalysis, Err: err}
	}
	if err := s.stageQuestions(ctx, &session); err != nil {
		s.failSession(ctx, sessionID, StageQuestions, err)
		return &StageError{Stage: StageQuestions, Err: err}
	}

	completedAt := time.Now().UTC()
	metrics.IncPipelineCompleted()
	metrics.ObservePipelineDurationMs(durationMs(startedAt, completedAt))
	telemetry.Info("interview.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"interview_id":      sessionID,
		"user_id":           session.UserID,
		"status":            StatusReady,
		"status_transition": "setup->ready",
		"question_count":    len(session.Questions),
		"match_score":       session.Gap.MatchScore,
		"duration_ms":       durationMs(startedAt, completedAt),
	})
	return nil
}

type extractionOut struct {
	result llm.Result
	err    error
}

// stageProfiles extracts the candidate profile and role requirements
// concurrently. The stage is all-or-nothing: if either extraction
// fails, neither result is kept.
func (s *Service) stageProfiles(ctx context.Context, session *Session) error {
	var candidate CandidateProfile
	var role RoleRequirement

	cvCh := make(chan extractionOut, 1)
	jdCh := make(chan extractionOut, 1)

	// Each extraction runs on its own goroutine, so the worker-level
	// recover cannot see a panic raised here; trap it at the source.
	runExtraction := func(ch chan<- extractionOut, prompt llm.Prompt, schema llm.Schema, out any) {
		defer func() {
			if r := recover(); r != nil {
				ch <- extractionOut{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		res, err := s.Gateway.GenerateStructured(ctx, prompt, schema, out)
		ch <- extractionOut{result: res, err: err}
	}

	go runExtraction(cvCh, llm.CVExtractionPrompt(session.CVText), candidateSchema, &candidate)
	go runExtraction(jdCh, llm.JDExtractionPrompt(session.JDText), roleSchema, &role)

	cv := <-cvCh
	jd := <-jdCh
	if cv.err != nil {
		return fmt.Errorf("candidate profile: %w", cv.err)
	}
	if jd.err != nil {
		return fmt.Errorf("role requirements: %w", jd.err)
	}

	candidate.normalize()
	session.Candidate = &candidate
	session.Role = &role
	session.RecordModel(cv.result.Model)
	session.RecordModel(jd.result.Model)
	session.UpdatedAt = time.Now().UTC()
	return s.Repo.Update(ctx, *session)
}

// stageGapAnalysis compares the two profiles.
func (s *Service) stageGapAnalysis(ctx context.Context, session *Session) error {
	candidateJSON, err := json.Marshal(session.Candidate)
	if err != nil {
		return fmt.Errorf("encode candidate: %w", err)
	}
	roleJSON, err := json.Marshal(session.Role)
	if err != nil {
		return fmt.Errorf("encode role: %w", err)
	}

	var gap GapAnalysis
	res, err := s.Gateway.GenerateStructured(ctx,
		llm.GapAnalysisPrompt(string(candidateJSON), string(roleJSON)), gapSchema, &gap)
	if err != nil {
		return err
	}

	session.Gap = &gap
	session.RecordModel(res.Model)
	session.UpdatedAt = time.Now().UTC()
	return s.Repo.Update(ctx, *session)
}

// stageQuestions generates and normalizes the question script, then
// marks the session ready.
func (s *Service) stageQuestions(ctx context.Context, session *Session) error {
	gapJSON, err := json.Marshal(session.Gap)
	if err != nil {
		return fmt.Errorf("encode gap: %w", err)
	}

	var script questionScript
	res, err := s.Gateway.GenerateStructured(ctx,
		llm.QuestionScriptPrompt(string(gapJSON), session.Role.Title, strings.Join(session.Gap.HighPriorityAreas(), ", ")),
		questionScriptSchema, &script)
	if err != nil {
		return err
	}
	script.normalize()

	if !CanTransition(session.Status, StatusReady) {
		return fmt.Errorf("cannot move %s session to %s", session.Status, StatusReady)
	}
	session.Questions = script.Questions
	session.Cursor = 0
	session.Status = StatusReady
	session.RecordModel(res.Model)
	session.UpdatedAt = time.Now().UTC()
	return s.Repo.Update(ctx, *session)
}

// failSession records a pipeline failure on the session. Persistence
// uses a fresh context so a canceled request cannot block the write.
func (s *Service) failSession(ctx context.Context, sessionID, stage string, cause error) {
	code, retryable := classifyFailure(cause)
	msg := sanitizeError(cause)

	session, err := s.Repo.GetByID(context.Background(), sessionID)
	if err != nil {
		telemetry.Error("interview.fail_lookup_failed", map[string]any{
			"interview_id": sessionID,
			"error":        err.Error(),
			"cause":        msg,
		})
		return
	}
	if !CanTransition(session.Status, StatusError) {
		return
	}
	from := session.Status
	session.Status = StatusError
	session.FailedStage = stage
	session.ErrorCode = code
	session.ErrorMessage = msg
	session.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(context.Background(), session); err != nil {
		telemetry.Error("interview.fail_persist_failed", map[string]any{
			"interview_id": sessionID,
			"error":        err.Error(),
			"cause":        msg,
		})
		return
	}

	metrics.IncPipelineFailed()
	telemetry.Info("interview.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"interview_id":      sessionID,
		"user_id":           session.UserID,
		"status":            StatusError,
		"status_transition": from + "->error",
		"failed_stage":      stage,
		"error_code":        code,
		"retryable":         retryable,
		"error":             msg,
	})
}
