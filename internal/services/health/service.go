package health

import (
	"context"
	"database/sql"
	"time"

	"interview-backend/internal/queue"
	"interview-backend/internal/shared/storage/object"
)

const probeTimeout = 2 * time.Second

// Service reports liveness of the wired backends.
type Service struct {
	DB        *sql.DB
	Store     object.ObjectStore
	Queue     queue.Client
	StoreType string
}

// NewService constructs a health service over the given backends. Nil
// backends report as disabled rather than failing.
func NewService(db *sql.DB, store object.ObjectStore, q queue.Client, storeType string) *Service {
	return &Service{DB: db, Store: store, Queue: q, StoreType: storeType}
}

// Status probes the database and reports how the store and queue are
// wired. The overall flag only drops when a configured backend fails.
func (s *Service) Status(ctx context.Context) map[string]any {
	status := map[string]any{"ok": true}

	switch {
	case s == nil || s.DB == nil:
		status["db"] = "disabled"
	default:
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		if err := s.DB.PingContext(probeCtx); err != nil {
			status["db"] = "down"
			status["ok"] = false
		} else {
			status["db"] = "ok"
		}
	}

	if s == nil || s.Store == nil {
		status["store"] = "disabled"
	} else if s.StoreType != "" {
		status["store"] = s.StoreType
	} else {
		status["store"] = "ok"
	}

	if s == nil || s.Queue == nil {
		status["queue"] = "disabled"
	} else {
		status["queue"] = "configured"
	}

	return status
}
