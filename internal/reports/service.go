package reports

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"interview-backend/internal/interviews"
	"interview-backend/internal/shared/storage/object"
	"interview-backend/report/contract"
	"interview-backend/report/render"
)

// ReportSource produces final reports for finished interviews.
type ReportSource interface {
	GenerateReport(ctx context.Context, userID, sessionID string) (interviews.FinalReport, error)
}

// Service renders hiring reports into stored artifacts.
type Service struct {
	Repo   Repo
	Source ReportSource
	Store  object.ObjectStore
}

// Render generates the report for a finished interview, renders it in
// the requested format, and stores the result as a downloadable artifact.
// An empty format renders markdown.
func (s *Service) Render(ctx context.Context, userID, sessionID, format string) (Artifact, error) {
	if userID == "" || sessionID == "" {
		return Artifact{}, ErrInvalidInput
	}
	if s.Repo == nil || s.Source == nil || s.Store == nil {
		return Artifact{}, errors.New("missing dependencies")
	}
	normalized, ok := normalizeFormat(format)
	if !ok {
		return Artifact{}, ErrUnsupportedFormat
	}

	rep, err := s.Source.GenerateReport(ctx, userID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, interviews.ErrNotFound):
			return Artifact{}, ErrNotFound
		case errors.Is(err, interviews.ErrNotFinished):
			return Artifact{}, ErrNotReady
		}
		return Artifact{}, err
	}

	doc := buildDocument(rep)
	if err := contract.Enforce(&doc, false); err != nil {
		return Artifact{}, err
	}
	if err := doc.Validate(); err != nil {
		return Artifact{}, err
	}

	raw, err := render.Render(doc, normalized)
	if err != nil {
		return Artifact{}, err
	}

	fileName := "interview_report_" + sessionID + artifactFileExt(normalized)
	storageKey, size, _, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(raw))
	if err != nil {
		return Artifact{}, err
	}

	artifact := Artifact{
		ID:         uuid.NewString(),
		UserID:     userID,
		SessionID:  sessionID,
		Format:     normalized,
		FileName:   fileName,
		StorageKey: storageKey,
		MimeType:   artifactMimeType(normalized),
		SizeBytes:  size,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, artifact); err != nil {
		return Artifact{}, err
	}
	return artifact, nil
}

// Get returns an artifact by ID for a user.
func (s *Service) Get(ctx context.Context, userID, artifactID string) (Artifact, error) {
	if userID == "" || artifactID == "" {
		return Artifact{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, artifactID)
}

// List returns artifacts for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Artifact, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}
