package interviews

import "sync"

// sessionLocks serializes turn and report processing per session. Locks
// are never global: a gateway backoff sleep inside one interview blocks
// only that interview.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock acquires the mutex for one session id, creating it on first use.
// The zero value is ready to use.
func (l *sessionLocks) Lock(sessionID string) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for one session id.
func (l *sessionLocks) Unlock(sessionID string) {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	l.mu.Unlock()
	if ok {
		m.Unlock()
	}
}
