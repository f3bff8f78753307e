// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
)

// maxUploadBytes bounds an uploaded photo (10 MB before re-encoding).
const maxUploadBytes = 10 << 20

// UploadPhoto accepts a multipart photo upload, normalizes it to a bounded
// JPEG and stores it, returning the public URL. Used for listing images and
// registration passport photos, so it stays open to unauthenticated clients
// behind the global rate limit.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("photo")
	if err != nil {
		WriteBadRequest(w, "A 'photo' file field is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	photo, err := h.processor.Process(file)
	if err != nil {
		slog.Warn("photo processing failed", "filename", header.Filename, "error", err)
		WriteValidationError(w, map[string]string{
			"photo": "Unsupported or corrupt image. Use JPEG, PNG, GIF or WebP.",
		})
		return
	}

	url, err := h.storage.Store(r.Context(), photo)
	if err != nil {
		slog.Error("photo storage failed", "error", err)
		WriteInternalError(w, "Failed to store the photo")
		return
	}

	WriteCreated(w, map[string]string{"url": url})
}
