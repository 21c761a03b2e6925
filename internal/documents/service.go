package documents

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"interview-backend/internal/extract"
	"interview-backend/internal/shared/storage/object"
	"interview-backend/internal/shared/telemetry"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
}

// Upload saves the file to object storage, extracts its text and
// records the document. Extraction failures fail the upload so broken
// files never reach an interview.
func (s *Service) Upload(ctx context.Context, userID, kind, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	normalizedKind := NormalizeKind(kind)
	if normalizedKind == "" {
		return Document{}, fmt.Errorf("%w: kind must be %s or %s", ErrInvalidInput, KindResume, KindJobDescription)
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(fileName))] {
		return Document{}, fmt.Errorf("%w: unsupported file type %s", ErrInvalidInput, filepath.Ext(fileName))
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	if _, err := extract.ExtractText(ctx, s.Store, storageKey, mimeType, fileName); err != nil {
		telemetry.Warn("document.extract_failed", map[string]any{
			"user_id": userID,
			"file":    fileName,
			"error":   err.Error(),
		})
		return Document{}, fmt.Errorf("%w: could not extract text from %s", ErrInvalidInput, fileName)
	}
	extractedAt := time.Now().UTC()

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		Kind:             normalizedKind,
		FileName:         fileName,
		MimeType:         mimeType,
		SizeBytes:        size,
		StorageKey:       storageKey,
		ExtractedTextKey: extract.DerivedTextKey(storageKey),
		ExtractedAt:      &extractedAt,
		CreatedAt:        extractedAt,
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// CreateFromS3 records a document that the client uploaded directly to
// S3 via a presigned URL. Text extraction is deferred to first use.
func (s *Service) CreateFromS3(ctx context.Context, userID, kind, s3Key, originalFileName, contentType string, sizeBytes int64) (Document, error) {
	normalizedKind := NormalizeKind(kind)
	if normalizedKind == "" {
		return Document{}, fmt.Errorf("%w: kind must be %s or %s", ErrInvalidInput, KindResume, KindJobDescription)
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		Kind:             normalizedKind,
		FileName:         originalFileName,
		OriginalFilename: originalFileName,
		MimeType:         contentType,
		ContentType:      contentType,
		SizeBytes:        sizeBytes,
		StorageProvider:  "s3",
		StorageKey:       s3Key,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Get returns one document owned by the user.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes one document owned by the user.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidInput)
	}
	return s.Repo.Delete(ctx, userID, documentID)
}
