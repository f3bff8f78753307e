// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"strings"
)

const minCodeLength = 6

// accessCodes carries the two access codes shown on the admin settings page.
type accessCodes struct {
	AdminCode     string `json:"adminCode"`
	PublisherCode string `json:"publisherCode"`
}

// GetCodes returns the current access codes. Mounted behind the admin code
// check.
func (h *Handler) GetCodes(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, accessCodes{
		AdminCode:     h.store.AdminCode(),
		PublisherCode: h.store.PublisherCode(),
	}, nil)
}

type updateCodesRequest struct {
	AdminCode     *string `json:"adminCode,omitempty"`
	PublisherCode *string `json:"publisherCode,omitempty"`
}

// UpdateCodes replaces one or both access codes. Mounted behind the admin
// code check. New codes survive a restart.
func (h *Handler) UpdateCodes(w http.ResponseWriter, r *http.Request) {
	var req updateCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	errs := make(map[string]string)
	if req.AdminCode != nil && len(strings.TrimSpace(*req.AdminCode)) < minCodeLength {
		errs["adminCode"] = "Access codes must be at least 6 characters"
	}
	if req.PublisherCode != nil && len(strings.TrimSpace(*req.PublisherCode)) < minCodeLength {
		errs["publisherCode"] = "Access codes must be at least 6 characters"
	}
	if len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	if req.AdminCode != nil {
		if err := h.store.SetAdminCode(strings.TrimSpace(*req.AdminCode)); err != nil {
			WriteInternalError(w, "Failed to save the access code")
			return
		}
	}
	if req.PublisherCode != nil {
		if err := h.store.SetPublisherCode(strings.TrimSpace(*req.PublisherCode)); err != nil {
			WriteInternalError(w, "Failed to save the access code")
			return
		}
	}

	WriteSuccess(w, accessCodes{
		AdminCode:     h.store.AdminCode(),
		PublisherCode: h.store.PublisherCode(),
	}, nil)
}
