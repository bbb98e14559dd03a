// Package creds persists the auth token and theme flag across runs.
// It is a two-key string store; token contents are opaque to it.
package creds

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Keys used by the workspace controller. Values are strings; the theme
// flag is stored as "true"/"false".
const (
	TokenKey    = "auth_token"
	DarkModeKey = "dark_mode"
)

// Store is a file-backed key/value store at
// ~/.config/csviz/credentials.yaml (0600). Writes rewrite the whole
// file; the controller only writes on transition boundaries, never
// concurrently.
type Store struct {
	path   string
	values map[string]string
}

// DefaultPath returns the standard credentials file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "csviz", "credentials.yaml"), nil
}

// Open loads the store at path, starting empty when the file does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

// Get returns the stored value for key, reporting whether it exists.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores key=value and flushes to disk.
func (s *Store) Set(key, value string) error {
	s.values[key] = value
	return s.flush()
}

// Remove deletes key and flushes to disk. Removing an absent key is a
// no-op.
func (s *Store) Remove(key string) error {
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
