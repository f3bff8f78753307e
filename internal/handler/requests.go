// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nesthub/nesthub-go/internal/sync"
)

// CreateRequest records a client inquiry against a listing. Public; the
// inquiry succeeds even when the remote write fails.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var in sync.RequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ClientEmail = strings.TrimSpace(in.ClientEmail)
	in.ClientPhone = strings.TrimSpace(in.ClientPhone)

	errs := make(map[string]string)
	if in.PropertyID == "" {
		errs["propertyId"] = "Listing is required"
	}
	if in.ClientName == "" {
		errs["clientName"] = "Name is required"
	}
	if in.ClientEmail == "" && in.ClientPhone == "" {
		errs["clientEmail"] = "An email address or phone number is required"
	}
	if len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	req, ok := h.store.AddRequest(r.Context(), in)
	if !ok {
		WriteNotFound(w, "Listing not found")
		return
	}

	WriteCreated(w, req)
}

// AdminListRequests returns every client inquiry. Mounted behind the admin
// code check.
func (h *Handler) AdminListRequests(w http.ResponseWriter, r *http.Request) {
	requests := h.store.Requests()
	WriteSuccess(w, requests, &Meta{Total: len(requests)})
}

// DeleteRequest removes an inquiry. Mounted behind the admin code check.
// A failed remote delete restores the inquiry.
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	known := false
	for _, req := range h.store.Requests() {
		if req.ID == id {
			known = true
			break
		}
	}
	if !known {
		WriteNotFound(w, "Inquiry not found")
		return
	}

	if !h.store.DeleteRequest(r.Context(), id) {
		WriteError(w, http.StatusBadGateway, "delete_failed",
			"The inquiry could not be deleted and has been restored", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
