package interviews

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"interview-backend/internal/documents"
	"interview-backend/internal/extract"
	"interview-backend/internal/llm"
	"interview-backend/internal/queue"
	"interview-backend/internal/shared/storage/object"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/usage"
)

// DefaultSessionTimeout bounds how long an interview may stay live.
const DefaultSessionTimeout = 30 * time.Minute

// minInputChars is the minimum usable length for resume and job
// description text after extraction.
const minInputChars = 30

// Generator is the slice of the model gateway the interview flow uses.
type Generator interface {
	Generate(ctx context.Context, p llm.Prompt) (llm.Result, error)
	GenerateStructured(ctx context.Context, p llm.Prompt, schema llm.Schema, out any) (llm.Result, error)
}

// Synthesizer turns reply text into speech audio. Synthesis is always
// best-effort: failures drop the audio, never the turn.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Service owns the interview lifecycle: setup pipeline, turn
// processing and report synthesis.
type Service struct {
	Repo    Repo
	Gateway Generator
	Usage   *usage.Service
	DocRepo documents.DocumentsRepo
	Store   object.ObjectStore
	Queue   queue.Client
	Synth   Synthesizer
	Timeout time.Duration

	locks sessionLocks
}

// CreateInput carries the setup material for a new interview. Each side
// is either inline text or a stored document id.
type CreateInput struct {
	UserID       string
	CVText       string
	JDText       string
	CVDocumentID string
	JDDocumentID string
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.CVText) == "" && strings.TrimSpace(in.CVDocumentID) == "" {
		return fmt.Errorf("%w: resume text or document id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.JDText) == "" && strings.TrimSpace(in.JDDocumentID) == "" {
		return fmt.Errorf("%w: job description text or document id is required", ErrInvalidInput)
	}
	if t := strings.TrimSpace(in.CVText); t != "" && len(t) < minInputChars {
		return fmt.Errorf("%w: resume text is too short (minimum %d characters)", ErrInvalidInput, minInputChars)
	}
	if t := strings.TrimSpace(in.JDText); t != "" && len(t) < minInputChars {
		return fmt.Errorf("%w: job description text is too short (minimum %d characters)", ErrInvalidInput, minInputChars)
	}
	return nil
}

// Create persists a new session in setup and kicks off the analysis
// pipeline, via the queue when one is configured or in-process
// otherwise.
func (s *Service) Create(ctx context.Context, in CreateInput) (Session, error) {
	if err := in.validate(); err != nil {
		return Session{}, err
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, in.UserID, 1)
		if err != nil {
			return Session{}, err
		}
		if !ok {
			return Session{}, usage.ErrLimitReached
		}
	}

	now := time.Now().UTC()
	session := Session{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		Status:       StatusSetup,
		CVText:       strings.TrimSpace(in.CVText),
		JDText:       strings.TrimSpace(in.JDText),
		CVDocumentID: strings.TrimSpace(in.CVDocumentID),
		JDDocumentID: strings.TrimSpace(in.JDDocumentID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Repo.Create(ctx, session); err != nil {
		return Session{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, in.UserID, 1); err != nil {
			return Session{}, err
		}
	}

	if s.Queue != nil {
		msg := queue.NewMessage(session.ID, requestIDFromContext(ctx))
		if err := s.Queue.Send(ctx, msg); err != nil {
			s.failSession(ctx, session.ID, "enqueue", fmt.Errorf("queue send: %w", err))
			return Session{}, err
		}
		return session, nil
	}

	go s.runPipeline(backgroundWithRequestID(ctx), session.ID)

	return session, nil
}

// Get returns a session owned by the user.
func (s *Service) Get(ctx context.Context, userID, sessionID string) (Session, error) {
	session, err := s.Repo.GetByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if session.UserID != userID {
		return Session{}, ErrNotFound
	}
	return session, nil
}

// List returns the user's sessions, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// ListAll returns every session; exposed only on the debug surface.
func (s *Service) ListAll(ctx context.Context) ([]Session, error) {
	return s.Repo.ListAll(ctx)
}

// DeleteByUser removes all of a user's sessions (account purge).
func (s *Service) DeleteByUser(ctx context.Context, userID string) (int, error) {
	return s.Repo.DeleteByUser(ctx, userID)
}

// timeout returns the configured session timeout with the default
// applied.
func (s *Service) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultSessionTimeout
}

// expireIfTimedOut forces a live session past its wall clock budget
// into error and persists the change. It reports whether it tripped.
func (s *Service) expireIfTimedOut(ctx context.Context, session *Session) bool {
	if session.Status != StatusInterviewing || session.StartedAt == nil {
		return false
	}
	if time.Since(*session.StartedAt) <= s.timeout() {
		return false
	}
	session.Status = StatusError
	session.ErrorCode = ErrorCodeTimeout
	session.ErrorMessage = fmt.Sprintf("interview exceeded %s", s.timeout())
	session.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, *session); err != nil {
		telemetry.Error("interview.timeout_persist_failed", map[string]any{
			"interview_id": session.ID,
			"error":        err.Error(),
		})
	}
	telemetry.Info("interview.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"interview_id":      session.ID,
		"user_id":           session.UserID,
		"status":            StatusError,
		"status_transition": "interviewing->error",
		"error_code":        ErrorCodeTimeout,
	})
	return true
}

// resolveInputs materializes document-backed resume and job description
// text onto the session, extracting on first use.
func (s *Service) resolveInputs(ctx context.Context, session *Session) error {
	if session.CVText == "" {
		text, err := s.loadDocumentText(ctx, session.UserID, session.CVDocumentID)
		if err != nil {
			return fmt.Errorf("resume document %s: %w", session.CVDocumentID, err)
		}
		session.CVText = text
	}
	if session.JDText == "" {
		text, err := s.loadDocumentText(ctx, session.UserID, session.JDDocumentID)
		if err != nil {
			return fmt.Errorf("job description document %s: %w", session.JDDocumentID, err)
		}
		session.JDText = text
	}
	if len(strings.TrimSpace(session.CVText)) < minInputChars {
		return fmt.Errorf("resume text is too short after extraction (minimum %d characters)", minInputChars)
	}
	if len(strings.TrimSpace(session.JDText)) < minInputChars {
		return fmt.Errorf("job description text is too short after extraction (minimum %d characters)", minInputChars)
	}
	return nil
}

func (s *Service) loadDocumentText(ctx context.Context, userID, documentID string) (string, error) {
	if s.DocRepo == nil || s.Store == nil {
		return "", errors.New("document store is not configured")
	}
	doc, err := s.DocRepo.GetByID(ctx, userID, documentID)
	if err != nil {
		return "", fmt.Errorf("document lookup: %w", err)
	}

	extractedKey := doc.ExtractedTextKey
	if extractedKey == "" {
		if _, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName); err != nil {
			return "", fmt.Errorf("extract mime %s: %w", doc.MimeType, err)
		}
		extractedKey = extract.DerivedTextKey(doc.StorageKey)
		if err := s.DocRepo.UpdateExtraction(ctx, doc.UserID, doc.ID, extractedKey, time.Now().UTC()); err != nil {
			return "", fmt.Errorf("update extraction: %w", err)
		}
	}
	return loadText(ctx, s.Store, extractedKey)
}

func loadText(ctx context.Context, store object.ObjectStore, key string) (string, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("storage open %s: %w", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("storage read %s: %w", key, err)
	}
	return string(data), nil
}

// classifyFailure maps a pipeline or turn error to a stored error code
// and whether retrying the operation could help.
func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	var provider *llm.ProviderError
	if errors.As(err, &provider) {
		return ErrorCodeProviderExhausted, true
	}
	var schema *llm.SchemaError
	if errors.As(err, &schema) {
		return ErrorCodeSchemaMismatch, false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCodeStageFailure, true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "panic") {
		return ErrorCodeInternal, false
	}
	if strings.Contains(msg, "document") || strings.Contains(msg, "storage") || strings.Contains(msg, "extract") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeStageFailure, false
}

// sanitizeError flattens an error chain into a bounded single line for
// persistence.
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}
