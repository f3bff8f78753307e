// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"
)

// ErrNotFound is returned when an identifier matches no stored row.
var ErrNotFound = errors.New("remote: not found")

// ErrorKind is the structured classification of a remote failure. The sync
// layer decides retry and messaging from the kind, never from error text.
type ErrorKind int

// Remote failure kinds.
const (
	ErrKindNone ErrorKind = iota
	ErrKindPermissionDenied
	ErrKindSchemaMismatch // a write referenced a column the schema lacks
	ErrKindNotFound
	ErrKindNetwork
	ErrKindGeneric
)

// String returns a short name for the kind, used in logs.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindNone:
		return "none"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindSchemaMismatch:
		return "schema_mismatch"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindNetwork:
		return "network"
	default:
		return "generic"
	}
}

// Classifier maps a raw remote error to an ErrorKind. Implementations hold
// the backend-specific detection heuristics so write logic stays independent
// of the remote error vocabulary.
type Classifier interface {
	Classify(err error) ErrorKind
}

// SQLiteClassifier classifies errors reported by the SQLite-backed service.
type SQLiteClassifier struct{}

// Classify implements Classifier.
func (SQLiteClassifier) Classify(err error) ErrorKind {
	if err == nil {
		return ErrKindNone
	}

	if errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return ErrKindNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrKindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrKindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such column"),
		strings.Contains(msg, "has no column named"),
		strings.Contains(msg, "no such table"):
		return ErrKindSchemaMismatch
	case strings.Contains(msg, "readonly database"),
		strings.Contains(msg, "access permission denied"),
		strings.Contains(msg, "authorization denied"):
		return ErrKindPermissionDenied
	default:
		return ErrKindGeneric
	}
}
