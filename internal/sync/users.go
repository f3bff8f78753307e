// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nesthub/nesthub-go/internal/auth"
	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/remote"
)

// RegisterInput is an agent registration submission.
type RegisterInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BusinessName string `json:"businessName"`
	State        string `json:"state"`
	Password     string `json:"password"`
	PassportURL  string `json:"passportUrl"`
}

// RegisterUser records a registration. The record is appended to the end of
// the agent collection with a fresh time-based identifier and Pending status.
// A failed remote write is only logged (log_only policy); registration never
// fails the applicant once the password is hashed.
func (s *Store) RegisterUser(ctx context.Context, in RegisterInput) (model.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UnixMilli()
	u := model.User{
		ID:            fmt.Sprint(now),
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		BusinessName:  in.BusinessName,
		State:         in.State,
		PasswordHash:  hash,
		PassportURL:   in.PassportURL,
		Status:        model.UserPending,
		DateRequested: now,
	}

	if !s.demo {
		if err := s.remote.InsertUser(ctx, u); err != nil {
			slog.Warn("agent registration write failed remotely, keeping local record",
				"op", OpRegisterUser.String(),
				"policy", PolicyFor(OpRegisterUser).String(),
				"user", u.ID,
				"kind", s.classify.Classify(err).String(),
				"error", err)
		}
	}

	s.mu.Lock()
	s.users = append(s.users, u)
	s.bumpLocked(remote.CollectionUsers)
	s.mu.Unlock()

	return u, nil
}

// UpdateUser applies a partial edit to an agent record. The write is
// fire-and-forget (log_only policy): a remote failure keeps the local change
// and never fails the caller. Reports false only when the record is absent.
func (s *Store) UpdateUser(ctx context.Context, id string, patch remote.UserPatch) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.users {
		if s.users[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	applyUserPatch(&s.users[idx], patch)
	s.bumpLocked(remote.CollectionUsers)
	s.mu.Unlock()

	if !s.demo {
		if err := s.remote.UpdateUser(ctx, id, patch); err != nil {
			slog.Warn("agent update failed remotely, keeping local change",
				"op", OpUpdateUser.String(),
				"policy", PolicyFor(OpUpdateUser).String(),
				"user", id,
				"kind", s.classify.Classify(err).String(),
				"error", err)
		}
	}

	s.reconcileSession()
	return true
}

// SetUserStatus records an administrator decision on a registration,
// remote-first with the log_only policy.
func (s *Store) SetUserStatus(ctx context.Context, id string, status model.UserStatus) {
	if !s.demo {
		patch := remote.UserPatch{Status: &status}
		if err := s.remote.UpdateUser(ctx, id, patch); err != nil {
			slog.Warn("agent status write failed remotely",
				"op", OpSetUserStatus.String(),
				"policy", PolicyFor(OpSetUserStatus).String(),
				"user", id,
				"status", string(status),
				"kind", s.classify.Classify(err).String(),
				"error", err)
		}
	}

	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Status = status
			break
		}
	}
	s.bumpLocked(remote.CollectionUsers)
	s.mu.Unlock()

	s.reconcileSession()
}

func applyUserPatch(u *model.User, patch remote.UserPatch) {
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.BusinessName != nil {
		u.BusinessName = *patch.BusinessName
	}
	if patch.State != nil {
		u.State = *patch.State
	}
	if patch.PassportURL != nil {
		u.PassportURL = *patch.PassportURL
	}
	if patch.Status != nil {
		u.Status = *patch.Status
	}
}
