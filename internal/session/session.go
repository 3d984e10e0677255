// Package session persists the local session: the bearer token and a cached
// copy of the authenticated user.
//
// The store is the only reader and writer of the session file; everything else
// goes through its get/set/clear operations. The cached user is display-only
// and never consulted for authorization decisions.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/shared"
)

// FileName is the session file's name inside the state directory.
const FileName = "session.json"

// record is the on-disk shape of the session file.
type record struct {
	Token string       `json:"token,omitempty"`
	User  *models.User `json:"user,omitempty"`
}

// Store reads and writes the session file at a fixed path.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a [Store] backed by the file at path.
// An empty path places the file in the state directory (~/.castctl).
func NewStore(path string) (*Store, error) {
	if path == "" {
		dir, err := shared.StateDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, FileName)
	}

	return &Store{path: path}, nil
}

// Path returns the location of the session file.
func (s *Store) Path() string {
	return s.path
}

// Token returns the stored bearer token, or "" when no session exists.
func (s *Store) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return "", err
	}
	return rec.Token, nil
}

// User returns the cached user record, or nil when none is stored.
func (s *Store) User() (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return nil, err
	}
	return rec.User, nil
}

// SetToken stores the bearer token, preserving any cached user.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return err
	}
	rec.Token = token
	return s.save(rec)
}

// SetUser stores the cached user record, preserving the token.
func (s *Store) SetUser(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return err
	}
	rec.User = &user
	return s.save(rec)
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Store) load() (record, error) {
	var rec record

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return rec, nil
}

func (s *Store) save(rec record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Token material, same treatment as any credential file
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
