package interviews

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"interview-backend/internal/shared/telemetry"
)

// FileRepo persists each session as one JSON file under a directory.
// Writes go through a temp file and rename so readers never observe a
// half-written session. Corrupt files are skipped on directory scans;
// one bad record must not take down the rest.
type FileRepo struct {
	dir string
	mu  sync.RWMutex
}

// NewFileRepo creates the directory if needed and returns the repo.
func NewFileRepo(dir string) (*FileRepo, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("file repo: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file repo: create dir: %w", err)
	}
	return &FileRepo{dir: dir}, nil
}

func (r *FileRepo) path(sessionID string) string {
	return filepath.Join(r.dir, sessionID+".json")
}

// Create writes the session file. An existing file is overwritten.
func (r *FileRepo) Create(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(session)
}

// GetByID reads one session file.
func (r *FileRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.read(r.path(sessionID))
}

// Update rewrites the session file.
func (r *FileRepo) Update(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(r.path(session.ID)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("file repo: stat: %w", err)
	}
	return r.write(session)
}

// ListByUser scans the directory and filters by owner, newest first.
func (r *FileRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	sessions := make([]Session, 0, len(all))
	for _, s := range all {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}
	if offset >= len(sessions) {
		return []Session{}, nil
	}
	end := len(sessions)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return sessions[offset:end], nil
}

// ListAll loads every parseable session file, newest first. Files that
// fail to parse are logged and skipped.
func (r *FileRepo) ListAll(ctx context.Context) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("file repo: read dir: %w", err)
	}

	sessions := make([]Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		session, err := r.read(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			telemetry.Warn("interview.session_file_skipped", map[string]any{
				"file":  entry.Name(),
				"error": err.Error(),
			})
			continue
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteByUser removes every parseable session file owned by a user.
func (r *FileRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for _, s := range all {
		if s.UserID != userID {
			continue
		}
		if err := os.Remove(r.path(s.ID)); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return deleted, fmt.Errorf("file repo: remove %s: %w", s.ID, err)
		}
		deleted++
	}
	return deleted, nil
}

// ClaimGuest reassigns every parseable session file owned by a guest
// identity to an authenticated user.
func (r *FileRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for _, s := range all {
		if s.UserID != guestUserID {
			continue
		}
		s.UserID = authedUserID
		if err := r.write(s); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (r *FileRepo) read(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("file repo: read: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("file repo: decode: %w", err)
	}
	if session.ID == "" {
		return Session{}, fmt.Errorf("file repo: decode: record has no id")
	}
	return session, nil
}

func (r *FileRepo) write(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("file repo: encode: %w", err)
	}
	tmp, err := os.CreateTemp(r.dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("file repo: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file repo: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file repo: close: %w", err)
	}
	if err := os.Rename(tmpName, r.path(session.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file repo: rename: %w", err)
	}
	return nil
}

var _ Repo = (*FileRepo)(nil)
