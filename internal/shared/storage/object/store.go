// Package object abstracts blob storage for uploaded source documents,
// extracted text and rendered report artifacts.
package object

import (
	"context"
	"io"
)

// ObjectStore persists binary objects under owner-scoped keys.
//
// Save derives the storage key from the owner and file name and reports
// the stored size and detected mime type. Open streams an object back
// by the key Save returned.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
