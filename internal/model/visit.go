// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Visit is a best-effort record of a page visit. Writes are fire-and-forget;
// a failed insert is never surfaced to the visitor.
type Visit struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Country   string    `json:"country,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Event log levels and categories, mirrored to the events table by the
// logging handler.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

const (
	EventCategoryAuth     = "auth"
	EventCategoryProperty = "property"
	EventCategoryUser     = "user"
	EventCategoryRequest  = "request"
	EventCategorySystem   = "system"
)
