// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package remote defines the contract with the backing data service: three
// row collections with ordered bulk reads, keyed writes and a combined
// change-notification subscription, plus best-effort visit inserts.
package remote

import (
	"context"

	"github.com/nesthub/nesthub-go/internal/model"
)

// Collection names the three entity tables.
type Collection string

// Collections served by the remote store.
const (
	CollectionProperties Collection = "properties"
	CollectionUsers      Collection = "users"
	CollectionRequests   Collection = "requests"
)

// Op is the kind of change carried by a notification.
type Op string

// Change operations.
const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change is a single change notification. Subscribers typically react by
// re-reading the affected collection in full.
type Change struct {
	Collection Collection
	Op         Op
}

// PropertyRow is the wire shape of a stored listing. The identifier keeps
// the remote store's native type (string or number); Images and ImageURL
// reflect the schema generation the row was written under. Normalization to
// the domain model happens in the sync layer.
type PropertyRow struct {
	ID           any             `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        float64         `json:"price"`
	Location     *model.Location `json:"location"`
	Features     []string        `json:"features"`
	Type         string          `json:"type"`
	Category     string          `json:"category"`
	Images       []string        `json:"images"`
	ImageURL     string          `json:"imageUrl,omitempty"` // legacy single-image column
	DateAdded    int64           `json:"dateAdded"`
	ContactPhone string          `json:"contactPhone"`
	Status       string          `json:"status"`
	AgentID      any             `json:"agentId,omitempty"`
}

// UserRow is the wire shape of a stored agent record.
type UserRow struct {
	ID            any    `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	BusinessName  string `json:"businessName"`
	State         string `json:"state"`
	PasswordHash  string `json:"-"`
	PassportURL   string `json:"passportUrl"`
	Status        string `json:"status"`
	DateRequested int64  `json:"dateRequested"`
}

// RequestRow is the wire shape of a stored client request.
type RequestRow struct {
	ID            any     `json:"id"`
	PropertyID    any     `json:"propertyId"`
	PropertyTitle string  `json:"propertyTitle"`
	PropertyImage string  `json:"propertyImage"`
	PropertyPrice float64 `json:"propertyPrice"`
	ClientName    string  `json:"clientName"`
	ClientAddress string  `json:"clientAddress"`
	ClientEmail   string  `json:"clientEmail"`
	ClientPhone   string  `json:"clientPhone"`
	ClientState   string  `json:"clientState"`
	ClientLGA     string  `json:"clientLga"`
	DateRequested int64   `json:"dateRequested"`
}

// LegacyPropertyRecord is the sanitized write payload used by the
// schema-fallback insert path: no agent attribution and a single image
// column instead of the images array.
type LegacyPropertyRecord struct {
	ID           string
	Title        string
	Description  string
	Price        float64
	Location     model.Location
	Features     []string
	Type         model.PropertyType
	Category     model.PropertyCategory
	ImageURL     string
	DateAdded    int64
	ContactPhone string
	Status       model.PropertyStatus
}

// UserPatch is a partial update to a user record.
type UserPatch struct {
	Name         *string           `json:"name,omitempty"`
	Phone        *string           `json:"phone,omitempty"`
	BusinessName *string           `json:"businessName,omitempty"`
	State        *string           `json:"state,omitempty"`
	PassportURL  *string           `json:"passportUrl,omitempty"`
	Status       *model.UserStatus `json:"status,omitempty"`
}

// Service is the remote data service contract. All list reads return rows
// ordered by descending creation timestamp. Implementations emit a Change to
// subscribers after every successful write.
type Service interface {
	ListProperties(ctx context.Context) ([]PropertyRow, error)
	InsertProperty(ctx context.Context, p model.Property) error
	InsertPropertyLegacy(ctx context.Context, rec LegacyPropertyRecord) error
	UpdateProperty(ctx context.Context, id string, patch model.PropertyPatch) error
	DeleteProperty(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]UserRow, error)
	InsertUser(ctx context.Context, u model.User) error
	UpdateUser(ctx context.Context, id string, patch UserPatch) error

	ListRequests(ctx context.Context) ([]RequestRow, error)
	InsertRequest(ctx context.Context, r model.ClientRequest) error
	DeleteRequest(ctx context.Context, id string) error

	InsertVisit(ctx context.Context, v model.Visit) error

	// Subscribe registers a change callback and returns an unsubscribe
	// function. Callbacks run on their own goroutine.
	Subscribe(fn func(Change)) (unsubscribe func())
}
