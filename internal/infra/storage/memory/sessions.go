package memory

import (
	"context"
	"sync"

	domainauth "churnportal/internal/domain/auth"
)

// SessionStore keeps login sessions in memory, one per browser id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domainauth.BrowserID]*domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[domainauth.BrowserID]*domainauth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil || session.BrowserID == "" {
		return domainauth.ErrBrowserIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.BrowserID] = cloneSession(session)
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id domainauth.BrowserID) (*domainauth.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *SessionStore) Delete(ctx context.Context, id domainauth.BrowserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return domainauth.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func cloneSession(s *domainauth.Session) *domainauth.Session {
	if s == nil {
		return nil
	}
	copySession := *s
	return &copySession
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
