// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nesthub/nesthub-go/internal/model"
)

// SQLite is the SQLite-backed remote data service. Change notifications are
// emitted locally after each successful write, standing in for the managed
// platform's realtime channel.
type SQLite struct {
	db       *sql.DB
	classify Classifier

	mu     sync.Mutex
	subs   map[int]func(Change)
	nextID int
}

// NewSQLite creates a SQLite-backed Service.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{
		db:       db,
		classify: SQLiteClassifier{},
		subs:     make(map[int]func(Change)),
	}
}

// Subscribe implements Service.
func (s *SQLite) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *SQLite) notify(c Change) {
	s.mu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		go fn(c)
	}
}

const modernPropertyColumns = `id, title, description, price, loc_state, loc_lga, loc_address,
	features, type, category, images, image_url, date_added, contact_phone, status, agent_id`

const legacyPropertyColumns = `id, title, description, price, loc_state, loc_lga, loc_address,
	features, type, category, image_url, date_added, contact_phone, status`

// ListProperties implements Service. It first reads the current column set;
// against a legacy database it falls back to the pre-images column set.
func (s *SQLite) ListProperties(ctx context.Context) ([]PropertyRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+modernPropertyColumns+` FROM properties ORDER BY date_added DESC`)
	if err != nil {
		if s.classify.Classify(err) != ErrKindSchemaMismatch {
			return nil, fmt.Errorf("listing properties: %w", err)
		}
		return s.listPropertiesLegacy(ctx)
	}
	defer func() { _ = rows.Close() }()

	var out []PropertyRow
	for rows.Next() {
		var (
			r                        PropertyRow
			id, agentID              string
			state, lga, address      string
			featuresJSON, imagesJSON string
		)
		if err := rows.Scan(&id, &r.Title, &r.Description, &r.Price, &state, &lga, &address,
			&featuresJSON, &r.Type, &r.Category, &imagesJSON, &r.ImageURL,
			&r.DateAdded, &r.ContactPhone, &r.Status, &agentID); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		r.ID = id
		if agentID != "" {
			r.AgentID = agentID
		}
		r.Location = locationFromColumns(state, lga, address)
		r.Features = unmarshalStrings(featuresJSON)
		r.Images = unmarshalStrings(imagesJSON)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) listPropertiesLegacy(ctx context.Context) ([]PropertyRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+legacyPropertyColumns+` FROM properties ORDER BY date_added DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing properties (legacy): %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []PropertyRow
	for rows.Next() {
		var (
			r                   PropertyRow
			id                  string
			state, lga, address string
			featuresJSON        string
		)
		if err := rows.Scan(&id, &r.Title, &r.Description, &r.Price, &state, &lga, &address,
			&featuresJSON, &r.Type, &r.Category, &r.ImageURL,
			&r.DateAdded, &r.ContactPhone, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning property (legacy): %w", err)
		}
		r.ID = id
		r.Location = locationFromColumns(state, lga, address)
		r.Features = unmarshalStrings(featuresJSON)
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertProperty implements Service. Fails with a schema-mismatch
// classifiable error against a database lacking the images/agent_id columns.
func (s *SQLite) InsertProperty(ctx context.Context, p model.Property) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO properties (id, title, description, price, loc_state, loc_lga, loc_address,
			features, type, category, images, date_added, contact_phone, status, agent_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.Price,
		p.Location.State, p.Location.LGA, p.Location.Address,
		marshalStrings(p.Features), string(p.Type), string(p.Category),
		marshalStrings(p.Images), p.DateAdded, p.ContactPhone, string(p.Status), p.AgentID,
	)
	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	s.notify(Change{Collection: CollectionProperties, Op: OpInsert})
	return nil
}

// InsertPropertyLegacy implements Service: the sanitized fallback write.
func (s *SQLite) InsertPropertyLegacy(ctx context.Context, rec LegacyPropertyRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO properties (id, title, description, price, loc_state, loc_lga, loc_address,
			features, type, category, image_url, date_added, contact_phone, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.Description, rec.Price,
		rec.Location.State, rec.Location.LGA, rec.Location.Address,
		marshalStrings(rec.Features), string(rec.Type), string(rec.Category),
		rec.ImageURL, rec.DateAdded, rec.ContactPhone, string(rec.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting property (legacy): %w", err)
	}
	s.notify(Change{Collection: CollectionProperties, Op: OpInsert})
	return nil
}

// UpdateProperty implements Service.
func (s *SQLite) UpdateProperty(ctx context.Context, id string, patch model.PropertyPatch) error {
	set := make([]string, 0, 8)
	args := make([]any, 0, 10)

	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Location != nil {
		add("loc_state", patch.Location.State)
		add("loc_lga", patch.Location.LGA)
		add("loc_address", patch.Location.Address)
	}
	if patch.Features != nil {
		add("features", marshalStrings(*patch.Features))
	}
	if patch.Type != nil {
		add("type", string(*patch.Type))
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.Images != nil {
		add("images", marshalStrings(*patch.Images))
	}
	if patch.ContactPhone != nil {
		add("contact_phone", *patch.ContactPhone)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE properties SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating property %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating property %s: %w", id, ErrNotFound)
	}
	s.notify(Change{Collection: CollectionProperties, Op: OpUpdate})
	return nil
}

// DeleteProperty implements Service. Deleting an absent row is not an error.
func (s *SQLite) DeleteProperty(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting property %s: %w", id, err)
	}
	s.notify(Change{Collection: CollectionProperties, Op: OpDelete})
	return nil
}

// ListUsers implements Service.
func (s *SQLite) ListUsers(ctx context.Context) ([]UserRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, business_name, state, password_hash, passport_url, status, date_requested
		FROM users ORDER BY date_requested DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []UserRow
	for rows.Next() {
		var (
			r  UserRow
			id string
		)
		if err := rows.Scan(&id, &r.Name, &r.Email, &r.Phone, &r.BusinessName, &r.State,
			&r.PasswordHash, &r.PassportURL, &r.Status, &r.DateRequested); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		r.ID = id
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertUser implements Service.
func (s *SQLite) InsertUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, business_name, state, password_hash, passport_url, status, date_requested)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, u.BusinessName, u.State,
		u.PasswordHash, u.PassportURL, string(u.Status), u.DateRequested,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	s.notify(Change{Collection: CollectionUsers, Op: OpInsert})
	return nil
}

// UpdateUser implements Service.
func (s *SQLite) UpdateUser(ctx context.Context, id string, patch UserPatch) error {
	set := make([]string, 0, 6)
	args := make([]any, 0, 7)

	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.BusinessName != nil {
		add("business_name", *patch.BusinessName)
	}
	if patch.State != nil {
		add("state", *patch.State)
	}
	if patch.PassportURL != nil {
		add("passport_url", *patch.PassportURL)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating user %s: %w", id, ErrNotFound)
	}
	s.notify(Change{Collection: CollectionUsers, Op: OpUpdate})
	return nil
}

// ListRequests implements Service.
func (s *SQLite) ListRequests(ctx context.Context) ([]RequestRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, property_title, property_image, property_price,
			client_name, client_address, client_email, client_phone, client_state, client_lga, date_requested
		FROM requests ORDER BY date_requested DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RequestRow
	for rows.Next() {
		var (
			r              RequestRow
			id, propertyID string
		)
		if err := rows.Scan(&id, &propertyID, &r.PropertyTitle, &r.PropertyImage, &r.PropertyPrice,
			&r.ClientName, &r.ClientAddress, &r.ClientEmail, &r.ClientPhone,
			&r.ClientState, &r.ClientLGA, &r.DateRequested); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		r.ID = id
		r.PropertyID = propertyID
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertRequest implements Service.
func (s *SQLite) InsertRequest(ctx context.Context, r model.ClientRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (id, property_id, property_title, property_image, property_price,
			client_name, client_address, client_email, client_phone, client_state, client_lga, date_requested)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.PropertyID, r.PropertyTitle, r.PropertyImage, r.PropertyPrice,
		r.ClientName, r.ClientAddress, r.ClientEmail, r.ClientPhone,
		r.ClientState, r.ClientLGA, r.DateRequested,
	)
	if err != nil {
		return fmt.Errorf("inserting request: %w", err)
	}
	s.notify(Change{Collection: CollectionRequests, Op: OpInsert})
	return nil
}

// DeleteRequest implements Service.
func (s *SQLite) DeleteRequest(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting request %s: %w", id, err)
	}
	s.notify(Change{Collection: CollectionRequests, Op: OpDelete})
	return nil
}

// InsertVisit implements Service. Callers treat failures as non-fatal.
func (s *SQLite) InsertVisit(ctx context.Context, v model.Visit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (path, country, browser, os, device, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.Path, v.Country, v.Browser, v.OS, v.Device, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting visit: %w", err)
	}
	return nil
}

func locationFromColumns(state, lga, address string) *model.Location {
	if state == "" && lga == "" && address == "" {
		return nil
	}
	return &model.Location{State: state, LGA: lga, Address: address}
}

func marshalStrings(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ss)
	if err != nil {
		slog.Error("marshaling string list", "error", err)
		return "[]"
	}
	return string(b)
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var ss []string
	if err := json.Unmarshal([]byte(raw), &ss); err != nil {
		return nil
	}
	return ss
}
