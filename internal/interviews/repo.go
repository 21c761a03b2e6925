package interviews

import "context"

// Repo persists interview sessions. Update saves the whole session;
// repos never apply partial mutations.
type Repo interface {
	Create(ctx context.Context, session Session) error
	GetByID(ctx context.Context, sessionID string) (Session, error)
	Update(ctx context.Context, session Session) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Session, error)
	ListAll(ctx context.Context) ([]Session, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
}
