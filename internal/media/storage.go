// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const verifyTimeout = 5 * time.Second

// Storage writes processed photos to the uploads directory and hands out
// public URLs. A stored photo whose URL fails reachability verification is
// returned as an inline base64 data URI instead, so a submission never ends
// up referencing a dead link.
type Storage struct {
	uploadsDir string
	baseURL    string // public base URL, e.g. https://nesthub.example.com
	client     *http.Client
}

// NewStorage creates photo storage rooted at uploadsDir. baseURL may be empty,
// in which case verification is skipped and relative URLs are returned.
func NewStorage(uploadsDir, baseURL string) *Storage {
	return &Storage{
		uploadsDir: uploadsDir,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: verifyTimeout},
	}
}

// Store saves a processed JPEG and returns its public URL, or an inline data
// URI when the public URL cannot be verified.
func (s *Storage) Store(ctx context.Context, photo []byte) (string, error) {
	name := uuid.NewString() + ".jpg"

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads dir: %w", err)
	}
	path := filepath.Join(s.uploadsDir, name)
	if err := os.WriteFile(path, photo, 0o644); err != nil {
		return "", fmt.Errorf("saving photo: %w", err)
	}

	rel := "/uploads/" + name
	if s.baseURL == "" {
		return rel, nil
	}

	url := s.baseURL + rel
	if s.verify(ctx, url) {
		return url, nil
	}

	slog.Warn("stored photo not reachable at public URL, inlining", "url", url)
	return DataURI(photo), nil
}

// verify issues a HEAD request against the freshly stored photo.
func (s *Storage) verify(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// DataURI encodes a processed JPEG as an inline data URI.
func DataURI(photo []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(photo)
}
