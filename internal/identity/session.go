package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spec-kit/job-board/internal/api/dto"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/jobstore"
)

type storedSession struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expires_at"`
	Principal dto.PrincipalResponse `json:"principal"`
}

// SessionStore holds the signed-in session and persists it to disk. It is the
// TokenSource of the job store client. An empty path keeps the session in memory.
type SessionStore struct {
	mu      sync.RWMutex
	path    string
	session *jobstore.Session
	now     func() time.Time
}

// OpenSessionStore loads a previously saved session from path, if any.
func OpenSessionStore(path string) (*SessionStore, error) {
	s := &SessionStore{path: path, now: time.Now}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil || stored.Token == "" {
		return s, nil
	}
	s.session = &jobstore.Session{
		Token:     stored.Token,
		ExpiresAt: stored.ExpiresAt,
		Principal: stored.Principal.Domain(),
	}
	return s, nil
}

// Token returns the bearer token of an unexpired session.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked() {
		return ""
	}
	return s.session.Token
}

// Principal returns the signed-in principal, or nil.
func (s *SessionStore) Principal() *domain.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.activeLocked() {
		return nil
	}
	p := s.session.Principal
	return &p
}

func (s *SessionStore) activeLocked() bool {
	if s.session == nil {
		return false
	}
	return s.session.ExpiresAt.IsZero() || s.session.ExpiresAt.After(s.now())
}

// Set replaces the session and persists it.
func (s *SessionStore) Set(session *jobstore.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return s.persistLocked()
}

// Clear forgets the session.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *SessionStore) persistLocked() error {
	if s.path == "" || s.session == nil {
		return nil
	}
	raw, err := json.Marshal(storedSession{
		Token:     s.session.Token,
		ExpiresAt: s.session.ExpiresAt,
		Principal: dto.NewPrincipalResponse(s.session.Principal),
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(s.path, raw, 0o600)
}
