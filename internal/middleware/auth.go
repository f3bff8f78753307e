// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/session"
	"github.com/nesthub/nesthub-go/internal/sync"
)

type contextKey string

const agentKey contextKey = "agent"

// HeaderAdminCode carries the administrator access code on admin requests.
const HeaderAdminCode = "X-Admin-Code"

// HeaderPublisherCode carries the publisher access code on publish requests
// made without an agent session.
const HeaderPublisherCode = "X-Publisher-Code"

// RequireAgent admits only requests carrying a session for a registered
// agent. The agent record is attached to the request context.
func RequireAgent(sm *scs.SessionManager, store *sync.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sm.GetString(r.Context(), session.KeyUserID)
			if id == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Sign in required")
				return
			}

			agent, ok := store.UserByID(id)
			if !ok {
				// The record vanished remotely; the session is no longer valid.
				_ = sm.Destroy(r.Context())
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Sign in required")
				return
			}

			ctx := context.WithValue(r.Context(), agentKey, &agent)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAgent returns the agent attached by RequireAgent, or nil.
func GetAgent(r *http.Request) *model.User {
	agent, _ := r.Context().Value(agentKey).(*model.User)
	return agent
}

// RequireAdminCode admits only requests carrying the administrator access
// code in the X-Admin-Code header.
func RequireAdminCode(store *sync.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.VerifyAdminCode(r.Header.Get(HeaderAdminCode)) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Invalid access code")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
