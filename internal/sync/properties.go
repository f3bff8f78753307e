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

// CreateProperty submits a new listing. The draft's identifier, timestamp and
// status are assigned here; submissions always enter review as Pending.
//
// The remote write follows the retry_sanitized policy: if the first insert
// fails with a schema mismatch, it is retried once with the reduced
// previous-generation record. On success by either path the full original
// record, agent attribution and complete image list included, is prepended to
// the in-memory collection.
func (s *Store) CreateProperty(ctx context.Context, draft model.Property) (model.Property, Result) {
	now := time.Now().UnixMilli()
	draft.ID = fmt.Sprint(now)
	draft.DateAdded = now
	draft.Status = model.PropertyPending
	if draft.Features == nil {
		draft.Features = []string{}
	}
	if draft.Images == nil {
		draft.Images = []string{}
	}

	if !s.demo {
		if err := s.remote.InsertProperty(ctx, draft); err != nil {
			kind := s.classify.Classify(err)
			if kind != remote.ErrKindSchemaMismatch {
				return model.Property{}, s.createFailure(kind, err, false)
			}

			slog.Warn("listing insert hit a previous-generation schema, retrying sanitized",
				"op", OpCreateProperty.String(),
				"policy", PolicyFor(OpCreateProperty).String(),
				"property", draft.ID)
			// When the sanitized retry also fails, the initial schema
			// mismatch is the root cause, so the report keeps that kind.
			if err := s.remote.InsertPropertyLegacy(ctx, sanitizeForLegacySchema(draft)); err != nil {
				return model.Property{}, s.createFailure(remote.ErrKindSchemaMismatch, err, true)
			}
		}
	}

	s.mu.Lock()
	s.properties = append([]model.Property{draft}, s.properties...)
	s.bumpLocked(remote.CollectionProperties)
	if !s.demo {
		s.online = true
	}
	s.mu.Unlock()

	return draft, Result{OK: true, Message: "Listing submitted and is awaiting review."}
}

func (s *Store) createFailure(kind remote.ErrorKind, err error, retried bool) Result {
	slog.Error("listing submission failed",
		"op", OpCreateProperty.String(),
		"kind", kind.String(),
		"retried", retried,
		"error", err)
	if kind == remote.ErrKindNetwork {
		s.setOnline(false)
	}

	switch kind {
	case remote.ErrKindPermissionDenied:
		return Result{Message: "Submission was blocked by storage permissions. Contact an administrator."}
	case remote.ErrKindSchemaMismatch:
		return Result{Message: "The listing store schema is outdated (missing columns). Contact an administrator."}
	case remote.ErrKindNetwork:
		return Result{Message: "Could not reach the listing service. Check your connection and try again."}
	default:
		return Result{Message: "Failed to publish the listing. Please try again later."}
	}
}

// UpdateProperty applies a partial edit. The change lands on the in-memory
// copy first and stays there even if the remote write fails (keep_local
// policy); the remote failure is still reported to the caller as false.
func (s *Store) UpdateProperty(ctx context.Context, id string, patch model.PropertyPatch) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.properties {
		if s.properties[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	patch.Apply(&s.properties[idx])
	s.bumpLocked(remote.CollectionProperties)
	s.mu.Unlock()

	if s.demo {
		return true
	}

	if err := s.remote.UpdateProperty(ctx, id, patch); err != nil {
		slog.Warn("listing update failed remotely, keeping local change",
			"op", OpUpdateProperty.String(),
			"policy", PolicyFor(OpUpdateProperty).String(),
			"property", id,
			"kind", s.classify.Classify(err).String(),
			"error", err)
		return false
	}
	return true
}

// DeleteProperty removes a listing. The local removal is rolled back in full,
// original slice order included, if the remote delete fails.
func (s *Store) DeleteProperty(ctx context.Context, id string) bool {
	s.mu.Lock()
	snapshot := make([]model.Property, len(s.properties))
	copy(snapshot, s.properties)

	idx := -1
	for i := range s.properties {
		if s.properties[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.properties = append(s.properties[:idx], s.properties[idx+1:]...)
	s.bumpLocked(remote.CollectionProperties)
	s.mu.Unlock()

	if s.demo {
		return true
	}

	if err := s.remote.DeleteProperty(ctx, id); err != nil {
		slog.Error("listing delete failed remotely, rolling back",
			"op", OpDeleteProperty.String(),
			"policy", PolicyFor(OpDeleteProperty).String(),
			"property", id,
			"kind", s.classify.Classify(err).String(),
			"error", err)
		s.mu.Lock()
		s.properties = snapshot
		s.bumpLocked(remote.CollectionProperties)
		s.mu.Unlock()
		return false
	}
	return true
}

// SetPropertyStatus records an administrator decision. The remote write goes
// first and its failure is only logged; the local flip always happens
// (log_only policy), so moderation is never blocked by the remote store.
func (s *Store) SetPropertyStatus(ctx context.Context, id string, status model.PropertyStatus) {
	if !s.demo {
		patch := model.PropertyPatch{Status: &status}
		if err := s.remote.UpdateProperty(ctx, id, patch); err != nil {
			slog.Warn("listing status write failed remotely",
				"op", OpSetPropertyStatus.String(),
				"policy", PolicyFor(OpSetPropertyStatus).String(),
				"property", id,
				"status", string(status),
				"kind", s.classify.Classify(err).String(),
				"error", err)
		}
	}

	s.mu.Lock()
	for i := range s.properties {
		if s.properties[i].ID == id {
			s.properties[i].Status = status
			break
		}
	}
	s.bumpLocked(remote.CollectionProperties)
	s.mu.Unlock()
}
