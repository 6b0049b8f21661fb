package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Service keeps sessions in memory. Credentials are never persisted.
type Service struct {
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates a new session service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func sessionKey(tenantID, sessionID string) string {
	return tenantID + "/" + sessionID
}

// Remember stores password as the session's portal credential, creating the
// session on first use.
func (s *Service) Remember(ctx context.Context, tenantID, sessionID, password string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(tenantID, sessionID)
	sess, ok := s.sessions[key]
	if !ok {
		sess = &Session{ID: sessionID, TenantID: tenantID, CreatedAt: now}
		s.sessions[key] = sess
		s.logger.Debug("session started", "session_id", sessionID, "tenant_id", tenantID)
	}
	sess.credential = password
	sess.LastActivity = now

	out := *sess
	return &out, nil
}

// Credential returns the session's stored portal credential.
func (s *Service) Credential(ctx context.Context, tenantID, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionKey(tenantID, sessionID)]
	if !ok {
		return "", ErrSessionNotFound
	}
	if sess.credential == "" {
		return "", ErrNoCredential
	}
	sess.LastActivity = s.now()
	return sess.credential, nil
}

// Get returns a copy of the session.
func (s *Service) Get(ctx context.Context, tenantID, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionKey(tenantID, sessionID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *sess
	return &out, nil
}

// Close forgets the session and its credential.
func (s *Service) Close(ctx context.Context, tenantID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(tenantID, sessionID)
	if _, ok := s.sessions[key]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, key)
	s.logger.Debug("session closed", "session_id", sessionID, "tenant_id", tenantID)
	return nil
}
