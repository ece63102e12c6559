// Package session persists the dashboard login between CLI invocations.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultFile = "session.yaml"

type User struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type Session struct {
	Token   string    `yaml:"token"`
	User    *User     `yaml:"user,omitempty"`
	SavedAt time.Time `yaml:"saved_at"`
}

// Store is a YAML file holding at most one session. The zero session means
// logged out.
type Store struct {
	path string

	mu      sync.Mutex
	loaded  bool
	current Session
}

// DefaultPath is aitwy/session.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("resolve session dir: %w", errors.Join(err, herr))
		}
		dir = home
	}
	return filepath.Join(dir, "aitwy", defaultFile), nil
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the session file. A missing file yields an empty session.
func (s *Store) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Session, error) {
	if s.loaded {
		return s.current, nil
	}
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.current = Session{}
	case err != nil:
		return Session{}, fmt.Errorf("read session: %w", err)
	default:
		var sess Session
		if err := yaml.Unmarshal(data, &sess); err != nil {
			return Session{}, fmt.Errorf("decode session %s: %w", s.path, err)
		}
		s.current = sess
	}
	s.loaded = true
	return s.current, nil
}

// Save replaces the stored session. The file is readable by the owner only.
func (s *Store) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now().UTC()
	}
	data, err := yaml.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.current = sess
	s.loaded = true
	return nil
}

// Clear removes the session file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	s.current = Session{}
	s.loaded = true
	return nil
}

// Token returns the stored bearer token, or "" when logged out or unreadable.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.load()
	if err != nil {
		return ""
	}
	return sess.Token
}
