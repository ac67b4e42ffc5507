package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tranminh/clubhub/internal/app/models"
	"github.com/tranminh/clubhub/internal/pkg/apperrors"
	"github.com/tranminh/clubhub/internal/pkg/logger"
)

// Store persists the session as a single JSON object at a well-known path.
// Reads always go to disk rather than an in-memory cache, so a logout
// performed by another process takes effect on the next read.
type Store struct {
	path   string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewStore creates a Store backed by the given file path
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		logger: logger.With("session"),
	}
}

// Path returns the file path backing the store
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the persisted session. A missing file returns
// ErrNoSession. A file that cannot be parsed is removed as a side effect and
// returns ErrSessionCorrupt; both cases mean "logged out" to callers.
func (s *Store) Load() (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrNoSession
		}
		return nil, apperrors.NewCustomError(err, "failed to read session file")
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil || !session.IsValid() {
		s.logger.Warn().Str("path", s.path).Msg("Clearing corrupt session file")
		_ = os.Remove(s.path)
		return nil, apperrors.ErrSessionCorrupt
	}

	return &session, nil
}

// Current returns the session or nil when logged out
func (s *Store) Current() *models.Session {
	session, err := s.Load()
	if err != nil {
		return nil
	}
	return session
}

// Token implements the api.TokenSource contract: the current token or ""
func (s *Store) Token() string {
	session := s.Current()
	if session == nil {
		return ""
	}
	return session.Token
}

// Save persists the session, creating the parent directory when needed. The
// write goes through a temp file and rename so a concurrent reader never sees
// a half-written session.
func (s *Store) Save(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewCustomError(err, "failed to encode session")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return apperrors.NewCustomError(err, "failed to create session directory")
	}

	tmp, err := os.CreateTemp(dir, ".userinfo-*")
	if err != nil {
		return apperrors.NewCustomError(err, "failed to create session temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return apperrors.NewCustomError(err, "failed to write session file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return apperrors.NewCustomError(err, "failed to write session file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return apperrors.NewCustomError(err, "failed to replace session file")
	}

	s.logger.Debug().Str("user", session.User.ID).Msg("Session saved")
	return nil
}

// Clear removes the persisted session; clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.NewCustomError(err, "failed to clear session")
	}
	return nil
}
