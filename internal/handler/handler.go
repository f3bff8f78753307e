// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/nesthub/nesthub-go/internal/ai"
	"github.com/nesthub/nesthub-go/internal/cache"
	"github.com/nesthub/nesthub-go/internal/media"
	"github.com/nesthub/nesthub-go/internal/middleware"
	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/session"
	"github.com/nesthub/nesthub-go/internal/sync"
	"github.com/nesthub/nesthub-go/internal/version"
	"github.com/nesthub/nesthub-go/internal/visits"
)

// Handler serves the REST API. All state lives in the synchronized store;
// handlers translate HTTP into store operations and shape the responses.
type Handler struct {
	store     *sync.Store
	sessions  *scs.SessionManager
	login     *middleware.LoginProtection
	cache     cache.Cache
	processor *media.Processor
	storage   *media.Storage
	describer *ai.Generator
	visits    *visits.Logger
	ver       version.Info
}

// New creates a Handler wired to the given dependencies.
func New(
	store *sync.Store,
	sessions *scs.SessionManager,
	login *middleware.LoginProtection,
	c cache.Cache,
	processor *media.Processor,
	storage *media.Storage,
	describer *ai.Generator,
	visitLog *visits.Logger,
	ver version.Info,
) *Handler {
	return &Handler{
		store:     store,
		sessions:  sessions,
		login:     login,
		cache:     c,
		processor: processor,
		storage:   storage,
		describer: describer,
		visits:    visitLog,
		ver:       ver,
	}
}

// publisher resolves publish rights for a request: either a signed-in
// approved agent, or the publisher access code in the X-Publisher-Code
// header. The agent is nil for code-based publishing.
func (h *Handler) publisher(r *http.Request) (*model.User, bool) {
	if code := r.Header.Get(middleware.HeaderPublisherCode); code != "" {
		if h.store.VerifyPublisherCode(code) {
			return nil, true
		}
	}

	id := h.sessions.GetString(r.Context(), session.KeyUserID)
	if id == "" {
		return nil, false
	}
	agent, ok := h.store.UserByID(id)
	if !ok || !agent.CanPublish() {
		return nil, false
	}
	return &agent, true
}

// isAdmin reports whether the request carries a valid administrator code.
func (h *Handler) isAdmin(r *http.Request) bool {
	return h.store.VerifyAdminCode(r.Header.Get(middleware.HeaderAdminCode))
}
