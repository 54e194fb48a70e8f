// Package session persists the authenticated user record between runs.
//
// The store is a single JSON file. Reads fail soft: a malformed or
// shape-mismatched record is purged and treated as absent rather than
// surfaced as an error. There is no migration logic.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Session is the client-held record of the authenticated user.
// Field names match the backend's wire spellings so a login payload can be
// persisted as-is.
type Session struct {
	UserID      string `json:"UserId"`
	DisplayName string `json:"DisplayName,omitempty"`
	Email       string `json:"Email"`
	AvatarURL   string `json:"AvatarURL,omitempty"`
	Status      string `json:"Status,omitempty"`
}

// Valid reports whether the record can stand as an authenticated session.
// A session without an email is treated as corrupt.
func (s *Session) Valid() bool {
	return s != nil && s.Email != ""
}

// Store persists and retrieves the session record.
type Store interface {
	// Load returns the persisted session, or (nil, nil) when absent.
	Load() (*Session, error)
	// Save persists the session, replacing any existing record.
	Save(*Session) error
	// Clear removes the persisted record. Clearing an absent record is not
	// an error.
	Clear() error
}

// FileStore is the durable Store implementation backed by one JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the session record. Corrupt records are purged and reported as
// absent.
func (s *FileStore) Load() (*Session, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil || !sess.Valid() {
		// Fail soft: discard the corrupt record.
		_ = os.Remove(s.path)
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session record with owner-only permissions.
func (s *FileStore) Save(sess *Session) error {
	if !sess.Valid() {
		return fmt.Errorf("refusing to persist session without an email")
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session record.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
