// Package memory holds in-process implementations of the storage ports,
// used in development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/99minutos/service-portal/internal/core/domain"
)

type entry struct {
	sess      domain.Session
	expiresAt time.Time
}

// SessionStore is a process-local session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore returns an empty store. A ttl of zero keeps sessions until cleared.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{sessions: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *SessionStore) Set(_ context.Context, sid string, sess domain.Session) error {
	e := entry{sess: sess}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.sessions[sid] = e
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Get(_ context.Context, sid string) (domain.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[sid]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
		return domain.Session{}, nil
	}
	return e.sess.Normalize(), nil
}

func (s *SessionStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Ping(context.Context) error { return nil }
