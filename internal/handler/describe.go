// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"strings"
)

type describeRequest struct {
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Location string   `json:"location"`
	Features []string `json:"features"`
}

// Describe drafts a listing description for a publisher. The endpoint always
// answers with text: generation failures come back as a fallback message.
func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.publisher(r); !ok {
		WriteForbidden(w, "Publishing requires an approved agent account or a valid access code")
		return
	}

	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		WriteValidationError(w, map[string]string{"title": "Title is required"})
		return
	}

	text := h.describer.Describe(r.Context(), req.Title, req.Type, req.Location,
		strings.Join(req.Features, ", "))
	WriteSuccess(w, map[string]string{"description": text}, nil)
}
