package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // userId -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
	}
}

// Create stores a document for a user.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.UserID] = append(r.data[doc.UserID], doc)
	return nil
}

// GetByID returns a document by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == documentID && docs[i].DeletedAt == nil {
			return docs[i], nil
		}
	}
	return Document{}, ErrNotFound
}

// UpdateExtraction stores the extracted text metadata for a document.
// A document that already has an extraction key keeps it.
func (r *MemoryRepo) UpdateExtraction(ctx context.Context, userID, documentID, extractedKey string, extractedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == documentID {
			if docs[i].ExtractedTextKey == "" {
				docs[i].ExtractedTextKey = extractedKey
				docs[i].ExtractedAt = &extractedAt
				r.data[userID] = docs
			}
			return nil
		}
	}
	return ErrNotFound
}

// ListByUser returns documents for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userDocs := r.data[userID]
	r.mu.RUnlock()

	docs := make([]Document, 0, len(userDocs))
	for i := range userDocs {
		if userDocs[i].DeletedAt == nil {
			docs = append(docs, userDocs[i])
		}
	}
	if len(docs) == 0 || offset >= len(docs) {
		return []Document{}, nil
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return docs[offset:end], nil
}

// Delete soft-deletes one document.
func (r *MemoryRepo) Delete(ctx context.Context, userID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == documentID && docs[i].DeletedAt == nil {
			docs[i].DeletedAt = &now
			r.data[userID] = docs
			return nil
		}
	}
	return ErrNotFound
}

// DeleteByUser removes all documents owned by a user and reports how
// many were removed.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for i := range r.data[userID] {
		if r.data[userID][i].DeletedAt == nil {
			count++
		}
	}
	delete(r.data, userID)
	return count, nil
}

// ClaimGuest reassigns documents owned by a guest identity to an
// authenticated user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[guestUserID]
	if len(docs) == 0 {
		return 0, nil
	}
	moved := 0
	for i := range docs {
		if docs[i].DeletedAt != nil {
			continue
		}
		docs[i].UserID = authedUserID
		r.data[authedUserID] = append(r.data[authedUserID], docs[i])
		moved++
	}
	delete(r.data, guestUserID)
	return moved, nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
