package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/BradenHooton/wakeguard/internal/models"
)

// SessionRepository keeps server-side sessions in process memory, keyed by
// the opaque session token. A restart drops every session.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewSessionRepository creates an empty SessionRepository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*models.Session),
	}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *session
	r.sessions[session.Token] = &stored
	return nil
}

// Get returns a copy of the session for token
func (r *SessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[token]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *session
	return &out, nil
}

// Touch refreshes LastActivity of an active session and returns a copy.
// A session idle past inactivity, or older than maxAge, is deleted in the
// same critical section and ErrSessionExpired is returned, so a concurrent
// request can never revive it.
func (r *SessionRepository) Touch(ctx context.Context, token string, now time.Time, inactivity, maxAge time.Duration) (*models.Session, error) {
	return r.lookup(token, now, inactivity, maxAge, true)
}

// Peek is Touch without refreshing LastActivity. Expired sessions are still
// deleted.
func (r *SessionRepository) Peek(ctx context.Context, token string, now time.Time, inactivity, maxAge time.Duration) (*models.Session, error) {
	return r.lookup(token, now, inactivity, maxAge, false)
}

func (r *SessionRepository) lookup(token string, now time.Time, inactivity, maxAge time.Duration, refresh bool) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[token]
	if !ok {
		return nil, models.ErrNotFound
	}

	if session.IsIdle(now, inactivity) || session.IsPastMaxAge(now, maxAge) {
		delete(r.sessions, token)
		return nil, models.ErrSessionExpired
	}

	if refresh {
		session.LastActivity = now
	}
	out := *session
	return &out, nil
}

// Delete removes a session. It reports whether one existed.
func (r *SessionRepository) Delete(ctx context.Context, token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[token]
	delete(r.sessions, token)
	return ok
}

// HasSessionFromIP reports whether any stored session originated from ip
func (r *SessionRepository) HasSessionFromIP(ctx context.Context, ip string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, session := range r.sessions {
		if session.OriginIP == ip {
			return true
		}
	}
	return false
}

// DeleteExpired removes every idle or over-age session and returns copies of
// the removed sessions
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time, inactivity, maxAge time.Duration) []models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []models.Session
	for token, session := range r.sessions {
		if session.IsIdle(now, inactivity) || session.IsPastMaxAge(now, maxAge) {
			delete(r.sessions, token)
			removed = append(removed, *session)
		}
	}
	return removed
}

// Count returns the number of stored sessions
func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
