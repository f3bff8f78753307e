// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package localstate persists the small amount of node-local state that must
// survive restarts independently of the remote data service: the signed-in
// agent snapshot used for session reconciliation and the two access codes.
package localstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nesthub/nesthub-go/internal/model"
)

// Store is the local state contract. A nil session user means signed out; an
// empty access code means the configured default applies.
type Store interface {
	SessionUser() (*model.User, error)
	SetSessionUser(u *model.User) error

	AdminCode() (string, error)
	SetAdminCode(code string) error

	PublisherCode() (string, error)
	SetPublisherCode(code string) error
}

type fileState struct {
	SessionUser   *model.User `json:"sessionUser,omitempty"`
	AdminCode     string      `json:"adminCode,omitempty"`
	PublisherCode string      `json:"publisherCode,omitempty"`
}

// FileStore is a Store backed by a single JSON file. Writes replace the file
// atomically via rename.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// NewFileStore loads (or initializes) local state at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading local state: %w", err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parsing local state %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding local state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing local state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing local state: %w", err)
	}
	return nil
}

// SessionUser implements Store. The returned value is a copy.
func (s *FileStore) SessionUser() (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.SessionUser == nil {
		return nil, nil
	}
	u := *s.state.SessionUser
	return &u, nil
}

// SetSessionUser implements Store. Passing nil clears the session.
func (s *FileStore) SetSessionUser(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.state.SessionUser = nil
	} else {
		cp := *u
		s.state.SessionUser = &cp
	}
	return s.save()
}

// AdminCode implements Store.
func (s *FileStore) AdminCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AdminCode, nil
}

// SetAdminCode implements Store.
func (s *FileStore) SetAdminCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AdminCode = code
	return s.save()
}

// PublisherCode implements Store.
func (s *FileStore) PublisherCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PublisherCode, nil
}

// SetPublisherCode implements Store.
func (s *FileStore) SetPublisherCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PublisherCode = code
	return s.save()
}

// DefaultPath returns the local state file location under the data directory.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "localstate.json")
}
