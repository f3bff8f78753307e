// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import "net/http"

type healthStatus struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	Online    bool   `json:"online"`
	DemoMode  bool   `json:"demoMode"`
}

// Health reports process liveness plus the synchronization state: whether
// the store is reachable and whether the instance runs in demo mode.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, healthStatus{
		Status:    "ok",
		Version:   h.ver.Version,
		GitCommit: h.ver.GitCommit,
		Online:    h.store.Online(),
		DemoMode:  h.store.DemoMode(),
	})
}

// HealthLive is the liveness probe.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady is the readiness probe. The store serves from its in-memory
// snapshot even while the backing store is unreachable, so readiness does
// not depend on being online.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"online": h.store.Online(),
	})
}
