// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/remote"
)

// RequestInput is a client inquiry submission against one listing.
type RequestInput struct {
	PropertyID    string `json:"propertyId"`
	ClientName    string `json:"clientName"`
	ClientAddress string `json:"clientAddress"`
	ClientEmail   string `json:"clientEmail"`
	ClientPhone   string `json:"clientPhone"`
	ClientState   string `json:"clientState"`
	ClientLGA     string `json:"clientLga"`
}

// AddRequest records a client inquiry. The listing's title, cover image and
// price are snapshotted into the request at submission time and never change
// afterwards. The record is prepended locally; a failed remote write is only
// logged (log_only policy).
func (s *Store) AddRequest(ctx context.Context, in RequestInput) (model.ClientRequest, bool) {
	property, ok := s.PropertyByID(in.PropertyID)
	if !ok {
		return model.ClientRequest{}, false
	}

	now := time.Now().UnixMilli()
	req := model.ClientRequest{
		ID:            fmt.Sprint(now),
		ClientName:    in.ClientName,
		ClientAddress: in.ClientAddress,
		ClientEmail:   in.ClientEmail,
		ClientPhone:   in.ClientPhone,
		ClientState:   in.ClientState,
		ClientLGA:     in.ClientLGA,
		DateRequested: now,
	}
	req.SnapshotFrom(&property)

	if !s.demo {
		if err := s.remote.InsertRequest(ctx, req); err != nil {
			slog.Warn("inquiry write failed remotely, keeping local record",
				"op", OpAddRequest.String(),
				"policy", PolicyFor(OpAddRequest).String(),
				"request", req.ID,
				"kind", s.classify.Classify(err).String(),
				"error", err)
		}
	}

	s.mu.Lock()
	s.requests = append([]model.ClientRequest{req}, s.requests...)
	s.bumpLocked(remote.CollectionRequests)
	s.mu.Unlock()

	return req, true
}

// DeleteRequest removes a processed inquiry, rolling the local removal back
// if the remote delete fails (rollback policy).
func (s *Store) DeleteRequest(ctx context.Context, id string) bool {
	s.mu.Lock()
	snapshot := make([]model.ClientRequest, len(s.requests))
	copy(snapshot, s.requests)

	idx := -1
	for i := range s.requests {
		if s.requests[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.requests = append(s.requests[:idx], s.requests[idx+1:]...)
	s.bumpLocked(remote.CollectionRequests)
	s.mu.Unlock()

	if s.demo {
		return true
	}

	if err := s.remote.DeleteRequest(ctx, id); err != nil {
		slog.Error("inquiry delete failed remotely, rolling back",
			"op", OpDeleteRequest.String(),
			"policy", PolicyFor(OpDeleteRequest).String(),
			"request", id,
			"kind", s.classify.Classify(err).String(),
			"error", err)
		s.mu.Lock()
		s.requests = snapshot
		s.bumpLocked(remote.CollectionRequests)
		s.mu.Unlock()
		return false
	}
	return true
}
