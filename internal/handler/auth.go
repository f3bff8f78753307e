// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nesthub/nesthub-go/internal/middleware"
	"github.com/nesthub/nesthub-go/internal/session"
	"github.com/nesthub/nesthub-go/internal/sync"
)

const minPasswordLength = 6

// Register creates a new pending agent account. The account cannot publish
// until an administrator approves it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in sync.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	errs := make(map[string]string)
	if in.Name == "" {
		errs["name"] = "Name is required"
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		errs["email"] = "A valid email address is required"
	}
	if len(in.Password) < minPasswordLength {
		errs["password"] = "Password must be at least 6 characters"
	}
	if len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	// Registration never reuses an address already on file, whatever the
	// status of the existing record.
	for _, u := range h.store.Users() {
		if strings.EqualFold(u.Email, in.Email) {
			WriteValidationError(w, map[string]string{
				"email": "An account with this email already exists",
			})
			return
		}
	}

	user, err := h.store.RegisterUser(r.Context(), in)
	if err != nil {
		slog.Error("registration failed", "error", err)
		WriteInternalError(w, "Registration failed. Please try again later.")
		return
	}

	WriteCreated(w, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an agent and establishes a session. Failures are
// reported with a single opaque message; repeated failures lock the account.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if locked, remaining := h.login.IsAccountLocked(email); locked {
		slog.Warn("login attempt on locked account", "email", email)
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			"Account temporarily locked. Try again in "+remaining.Round(time.Second).String()+".", nil)
		return
	}

	user, ok := h.store.Login(req.Email, req.Password)
	if !ok {
		h.login.RecordFailedAttempt(email)
		WriteUnauthorized(w, "Invalid email or password")
		return
	}
	h.login.RecordSuccessfulLogin(email)

	// Rotate the session token on privilege change.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("session renew failed", "error", err)
		WriteInternalError(w, "Login failed. Please try again.")
		return
	}
	h.sessions.Put(r.Context(), session.KeyUserID, user.ID)

	WriteSuccess(w, user, nil)
}

// Logout ends the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout()
	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in agent. Mounted behind RequireAgent.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	agent := middleware.GetAgent(r)
	if agent == nil {
		WriteUnauthorized(w, "Sign in required")
		return
	}
	WriteSuccess(w, agent, nil)
}
