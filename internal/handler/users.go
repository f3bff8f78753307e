// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nesthub/nesthub-go/internal/middleware"
	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/remote"
)

// AdminListUsers returns every agent record. Mounted behind the admin code
// check.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.store.Users()
	WriteSuccess(w, users, &Meta{Total: len(users)})
}

// SetUserStatus moves an agent registration through review. Mounted behind
// the admin code check. If the agent is signed in somewhere, their session
// copy follows the change on the next refresh.
func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.UserByID(id); !ok {
		WriteNotFound(w, "Agent not found")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	status := model.UserStatus(req.Status)
	switch status {
	case model.UserPending, model.UserApproved, model.UserRejected:
	default:
		WriteValidationError(w, map[string]string{
			"status": "Status must be 'Pending', 'Approved' or 'Rejected'",
		})
		return
	}

	h.store.SetUserStatus(r.Context(), id, status)

	updated, _ := h.store.UserByID(id)
	WriteSuccess(w, updated, nil)
}

// UpdateProfile lets a signed-in agent edit their own record. Mounted
// behind RequireAgent. Status is not editable here.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	agent := middleware.GetAgent(r)
	if agent == nil {
		WriteUnauthorized(w, "Sign in required")
		return
	}

	var patch remote.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	patch.Status = nil

	if !h.store.UpdateUser(r.Context(), agent.ID, patch) {
		WriteNotFound(w, "Agent not found")
		return
	}

	updated, _ := h.store.UserByID(agent.ID)
	WriteSuccess(w, updated, nil)
}
