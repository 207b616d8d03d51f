package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// State is what argodash remembers between runs.
type State struct {
	// Tokens maps an Argo CD server URL to its session token.
	Tokens      map[string]string `yaml:"tokens,omitempty"`
	WelcomeSeen bool              `yaml:"welcomeSeen"`
}

// StateStore persists State as YAML with owner-only permissions.
type StateStore struct {
	path string
	mu   sync.Mutex
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// DefaultStatePath is $XDG_STATE_HOME/argodash/state.yaml.
func DefaultStatePath() string {
	return filepath.Join(StateDir(), "state.yaml")
}

func (s *StateStore) Path() string { return s.path }

func (s *StateStore) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *StateStore) load() (State, error) {
	var st State
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return st, fmt.Errorf("read state: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse state %s: %w", s.path, err)
	}
	return st, nil
}

// Update loads the state, applies fn and writes it back.
func (s *StateStore) Update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	fn(&st)
	return s.save(st)
}

func (s *StateStore) save(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Token returns the stored token for server, if any.
func (s *StateStore) Token(server string) string {
	st, err := s.Load()
	if err != nil {
		return ""
	}
	return st.Tokens[server]
}

func (s *StateStore) SetToken(server, token string) error {
	return s.Update(func(st *State) {
		if st.Tokens == nil {
			st.Tokens = map[string]string{}
		}
		st.Tokens[server] = token
	})
}

// ClearToken forgets the token for server after the API rejected it.
func (s *StateStore) ClearToken(server string) error {
	return s.Update(func(st *State) {
		delete(st.Tokens, server)
	})
}

func (s *StateStore) MarkWelcomeSeen() error {
	return s.Update(func(st *State) { st.WelcomeSeen = true })
}
