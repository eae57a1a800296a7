// Package session persists the client-side state: the bearer token, the
// cached current user and the organization branding.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

const (
	appDirName = "coworkctl"
	fileName   = "session.json"
)

// State is what survives between runs.
type State struct {
	Token        string               `json:"token,omitempty"`
	User         *models.User         `json:"user,omitempty"`
	Organization *models.Organization `json:"organization,omitempty"`
}

// Store is a State saved as JSON at a fixed path. Every mutation is written
// through before it returns. A Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	path  string
	state State
}

// DefaultPath is the session file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, fileName), nil
}

// Open loads the state at path. A missing file is an empty session; a file
// that cannot be decoded is discarded so a corrupt cache never blocks login.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return s, nil
	}
	if state.User != nil && state.User.Validate() != nil {
		state.User = nil
		state.Token = ""
	}
	if state.Organization != nil && state.Organization.Validate() != nil {
		state.Organization = nil
	}
	s.state = state
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	if state.User != nil {
		u := *state.User
		state.User = &u
	}
	if state.Organization != nil {
		o := *state.Organization
		state.Organization = &o
	}
	return state
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// User returns the cached current user.
func (s *Store) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return models.User{}, false
	}
	return *s.state.User, true
}

// Organization returns the cached branding.
func (s *Store) Organization() (models.Organization, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Organization == nil {
		return models.Organization{}, false
	}
	return *s.state.Organization, true
}

// SetAuth stores the token and the user it belongs to.
func (s *Store) SetAuth(token string, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = token
	s.state.User = &user
	return s.saveLocked()
}

func (s *Store) SetOrganization(org models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Organization = &org
	return s.saveLocked()
}

// Clear logs out: the token and cached user are removed, branding is kept.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = ""
	s.state.User = nil
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}
