// Package local is the filesystem ObjectStore used in development and
// single-node deployments.
package local

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"interview-backend/internal/shared/storage/object"
	"interview-backend/internal/shared/util"
)

// Store writes objects under baseDir, one directory per hashed owner.
type Store struct {
	baseDir string
}

// New creates a Store rooted at baseDir.
func New(baseDir string) object.ObjectStore {
	return &Store{baseDir: baseDir}
}

// Save writes the reader to disk under the owner's namespace. The file
// name gains a random token so repeated uploads never collide.
func (s *Store) Save(ctx context.Context, userID string, fileName string, r io.Reader) (string, int64, string, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	ownerDir := util.HashUserKey(userID)
	relPath := filepath.Join(ownerDir, uuid.NewString()+"_"+sanitized)

	if err := os.MkdirAll(filepath.Join(s.baseDir, ownerDir), 0o755); err != nil {
		return "", 0, "", fmt.Errorf("mkdir: %w", err)
	}

	var window [512]byte
	n, readErr := io.ReadFull(r, window[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return "", 0, "", fmt.Errorf("read sniff window: %w", readErr)
	}
	mimeType := http.DetectContentType(window[:n])

	size, err := writeFile(filepath.Join(s.baseDir, relPath), window[:n], r)
	if err != nil {
		return "", 0, "", err
	}
	return relPath, size, mimeType, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// SaveWithKey writes the reader at an exact storage key. The content
// type parameter exists for interface parity; the filesystem has
// nowhere to record it.
func (s *Store) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	return writeFile(fullPath, nil, r)
}

// resolve rejects traversal and absolute keys before joining baseDir.
func (s *Store) resolve(storageKey string) (string, error) {
	clean := filepath.Clean(storageKey)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

func writeFile(fullPath string, head []byte, rest io.Reader) (int64, error) {
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var size int64
	if len(head) > 0 {
		if _, err := f.Write(head); err != nil {
			return 0, fmt.Errorf("write head: %w", err)
		}
		size += int64(len(head))
	}
	written, err := io.Copy(f, rest)
	if err != nil {
		return 0, fmt.Errorf("write body: %w", err)
	}
	return size + written, nil
}
