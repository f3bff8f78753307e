// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package sync

import (
	"crypto/subtle"
	"log/slog"
	"reflect"
	"strings"

	"github.com/nesthub/nesthub-go/internal/auth"
	"github.com/nesthub/nesthub-go/internal/model"
)

// Login authenticates an agent by case-insensitive email and password. The
// outcome is opaque: a wrong email and a wrong password are indistinguishable
// to the caller. On success the session survives restarts via local state.
func (s *Store) Login(email, password string) (model.User, bool) {
	s.mu.RLock()
	var match *model.User
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			match = &s.users[i]
			break
		}
	}
	var candidate model.User
	if match != nil {
		candidate = *match
	}
	s.mu.RUnlock()

	if match == nil {
		// Burn a verification anyway so timing does not leak email existence.
		_, _ = auth.CheckPassword(password, dummyHash)
		return model.User{}, false
	}

	ok, err := auth.CheckPassword(password, candidate.PasswordHash)
	if err != nil || !ok {
		return model.User{}, false
	}

	s.mu.Lock()
	cp := candidate
	s.currentUser = &cp
	s.mu.Unlock()

	if err := s.local.SetSessionUser(&candidate); err != nil {
		slog.Warn("persisting session failed", "error", err)
	}
	return candidate, true
}

// dummyHash is a valid argon2id hash of an unused random secret, verified on
// login attempts against unknown emails to keep response timing flat.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$WFhYWFhYWFhYWFhYWFhYWA$c2Ftc2Ftc2Ftc2Ftc2Ftc2Ftc2Ftc2Ftc2Ftc2E"

// Logout clears the signed-in agent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.currentUser = nil
	s.mu.Unlock()

	if err := s.local.SetSessionUser(nil); err != nil {
		slog.Warn("clearing session failed", "error", err)
	}
}

// CurrentUser returns a copy of the signed-in agent, or false when signed out.
func (s *Store) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return model.User{}, false
	}
	return *s.currentUser, true
}

// reconcileSession realigns the signed-in agent with the refreshed user
// collection. A session whose record disappeared is terminated; a session
// whose record changed in any field is replaced with the fresh copy.
func (s *Store) reconcileSession() {
	s.mu.Lock()
	if s.currentUser == nil {
		s.mu.Unlock()
		return
	}

	var fresh *model.User
	for i := range s.users {
		if s.users[i].ID == s.currentUser.ID {
			fresh = &s.users[i]
			break
		}
	}

	switch {
	case fresh == nil:
		slog.Info("session user no longer exists, signing out", "user", s.currentUser.ID)
		s.currentUser = nil
		s.mu.Unlock()
		if err := s.local.SetSessionUser(nil); err != nil {
			slog.Warn("clearing session failed", "error", err)
		}
	case !reflect.DeepEqual(*fresh, *s.currentUser):
		cp := *fresh
		s.currentUser = &cp
		persist := cp
		s.mu.Unlock()
		if err := s.local.SetSessionUser(&persist); err != nil {
			slog.Warn("persisting reconciled session failed", "error", err)
		}
	default:
		s.mu.Unlock()
	}
}

// VerifyAdminCode checks a submitted administrator access code.
func (s *Store) VerifyAdminCode(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return subtle.ConstantTimeCompare([]byte(code), []byte(s.adminCode)) == 1
}

// VerifyPublisherCode checks a submitted publisher access code.
func (s *Store) VerifyPublisherCode(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return subtle.ConstantTimeCompare([]byte(code), []byte(s.publisherCode)) == 1
}

// AdminCode returns the current administrator access code.
func (s *Store) AdminCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminCode
}

// PublisherCode returns the current publisher access code.
func (s *Store) PublisherCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publisherCode
}

// SetAdminCode replaces the administrator access code and persists it.
func (s *Store) SetAdminCode(code string) error {
	if err := s.local.SetAdminCode(code); err != nil {
		return err
	}
	s.mu.Lock()
	s.adminCode = code
	s.mu.Unlock()
	return nil
}

// SetPublisherCode replaces the publisher access code and persists it.
func (s *Store) SetPublisherCode(code string) error {
	if err := s.local.SetPublisherCode(code); err != nil {
		return err
	}
	s.mu.Lock()
	s.publisherCode = code
	s.mu.Unlock()
	return nil
}
