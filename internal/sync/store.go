// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sync holds the data synchronization layer: an in-memory working
// copy of the three remote collections, kept fresh by bulk refresh and change
// notifications, with optimistic mutations governed by per-operation failure
// policies.
package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nesthub/nesthub-go/internal/localstate"
	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/remote"
)

// Default access codes, used until an administrator changes them.
const (
	DefaultAdminCode     = "admin123"
	DefaultPublisherCode = "agent123"
)

const refreshTimeout = 10 * time.Second

// Result is the outcome of a listing submission: a success flag and a human
// message suitable for direct display.
type Result struct {
	OK      bool   `json:"success"`
	Message string `json:"message"`
}

// Filter is the public browsing filter over approved listings.
type Filter struct {
	State    string                 `json:"state,omitempty"`
	LGA      string                 `json:"lga,omitempty"`
	Type     model.PropertyType     `json:"type,omitempty"`
	Category model.PropertyCategory `json:"category,omitempty"`
}

// Store is the synchronized application state. All reads return copies; all
// mutations go through methods that apply the operation's failure policy.
//
// In demo mode there is no remote service: every operation succeeds against
// the in-memory copy alone and nothing survives a restart.
type Store struct {
	remote   remote.Service
	classify remote.Classifier
	local    localstate.Store
	demo     bool

	mu         sync.RWMutex
	properties []model.Property
	users      []model.User
	requests   []model.ClientRequest

	// versions count local mutations per collection. A bulk refresh records
	// the counter before fetching and discards its snapshot if the counter
	// moved while the fetch was in flight, so a slow read never clobbers a
	// newer local write.
	versions map[remote.Collection]uint64

	currentUser   *model.User
	adminCode     string
	publisherCode string

	filter Filter
	online bool

	unsubscribe func()
}

// New creates a Store. svc may be nil only when demoMode is true.
func New(svc remote.Service, classifier remote.Classifier, local localstate.Store, demoMode bool) *Store {
	return &Store{
		remote:        svc,
		classify:      classifier,
		local:         local,
		demo:          demoMode,
		properties:    []model.Property{},
		users:         []model.User{},
		requests:      []model.ClientRequest{},
		versions:      make(map[remote.Collection]uint64),
		adminCode:     DefaultAdminCode,
		publisherCode: DefaultPublisherCode,
	}
}

// Start restores persisted local state, performs the initial bulk refresh and
// subscribes to remote change notifications. In demo mode it only restores
// local state.
func (s *Store) Start(ctx context.Context) error {
	if err := s.restoreLocalState(); err != nil {
		return err
	}

	if s.demo {
		slog.Info("sync store started in demo mode, remote disabled")
		return nil
	}

	s.RefreshAll(ctx)
	s.reconcileSession()

	s.unsubscribe = s.remote.Subscribe(func(c remote.Change) {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		s.refreshCollection(ctx, c.Collection)
	})

	slog.Info("sync store started",
		"properties", len(s.Properties()),
		"users", len(s.Users()),
		"requests", len(s.Requests()))
	return nil
}

// Stop detaches the store from remote change notifications.
func (s *Store) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Store) restoreLocalState() error {
	admin, err := s.local.AdminCode()
	if err != nil {
		return err
	}
	publisher, err := s.local.PublisherCode()
	if err != nil {
		return err
	}
	user, err := s.local.SessionUser()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if admin != "" {
		s.adminCode = admin
	}
	if publisher != "" {
		s.publisherCode = publisher
	}
	s.currentUser = user
	return nil
}

// RefreshAll replaces all three collections from the remote store. Failures
// are logged and flip the store offline; the stale in-memory copy stays
// serving reads.
func (s *Store) RefreshAll(ctx context.Context) {
	s.refreshCollection(ctx, remote.CollectionProperties)
	s.refreshCollection(ctx, remote.CollectionUsers)
	s.refreshCollection(ctx, remote.CollectionRequests)
}

func (s *Store) refreshCollection(ctx context.Context, c remote.Collection) {
	if s.demo {
		return
	}

	var err error
	switch c {
	case remote.CollectionProperties:
		err = s.refreshProperties(ctx)
	case remote.CollectionUsers:
		err = s.refreshUsers(ctx)
		if err == nil {
			s.reconcileSession()
		}
	case remote.CollectionRequests:
		err = s.refreshRequests(ctx)
	}

	if err != nil {
		slog.Warn("collection refresh failed",
			"collection", string(c),
			"kind", s.classify.Classify(err).String(),
			"error", err)
		s.setOnline(false)
	}
}

func (s *Store) refreshProperties(ctx context.Context) error {
	v := s.version(remote.CollectionProperties)

	rows, err := s.remote.ListProperties(ctx)
	if err != nil {
		return err
	}

	next := make([]model.Property, 0, len(rows))
	for _, r := range rows {
		next = append(next, normalizeProperty(r))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[remote.CollectionProperties] != v {
		slog.Debug("discarding stale properties snapshot", "rows", len(next))
		return nil
	}
	s.properties = next
	s.online = true
	return nil
}

func (s *Store) refreshUsers(ctx context.Context) error {
	v := s.version(remote.CollectionUsers)

	rows, err := s.remote.ListUsers(ctx)
	if err != nil {
		return err
	}

	next := make([]model.User, 0, len(rows))
	for _, r := range rows {
		next = append(next, normalizeUser(r))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[remote.CollectionUsers] != v {
		slog.Debug("discarding stale users snapshot", "rows", len(next))
		return nil
	}
	s.users = next
	s.online = true
	return nil
}

func (s *Store) refreshRequests(ctx context.Context) error {
	v := s.version(remote.CollectionRequests)

	rows, err := s.remote.ListRequests(ctx)
	if err != nil {
		return err
	}

	next := make([]model.ClientRequest, 0, len(rows))
	for _, r := range rows {
		next = append(next, normalizeRequest(r))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[remote.CollectionRequests] != v {
		slog.Debug("discarding stale requests snapshot", "rows", len(next))
		return nil
	}
	s.requests = next
	s.online = true
	return nil
}

func (s *Store) version(c remote.Collection) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[c]
}

// bumpLocked increments a collection's mutation counter. Callers hold mu.
func (s *Store) bumpLocked(c remote.Collection) {
	s.versions[c]++
}

func (s *Store) setOnline(v bool) {
	s.mu.Lock()
	s.online = v
	s.mu.Unlock()
}

// Online reports whether the last remote read or write round-trip succeeded.
// Always false in demo mode.
func (s *Store) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online && !s.demo
}

// DemoMode reports whether the store runs without a remote service.
func (s *Store) DemoMode() bool {
	return s.demo
}

// Properties returns a copy of the in-memory listing collection, newest first.
func (s *Store) Properties() []model.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Property, len(s.properties))
	copy(out, s.properties)
	return out
}

// PropertyByID returns a copy of a listing, or false if absent.
func (s *Store) PropertyByID(id string) (model.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.properties {
		if p.ID == id {
			return p, true
		}
	}
	return model.Property{}, false
}

// Users returns a copy of the agent collection, newest first.
func (s *Store) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

// UserByID returns a copy of an agent record, or false if absent.
func (s *Store) UserByID(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Requests returns a copy of the inquiry collection, newest first.
func (s *Store) Requests() []model.ClientRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ClientRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// SetFilter replaces the public browsing filter.
func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// Filter returns the current browsing filter.
func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// FilteredProperties returns approved listings matching the given filter.
// Zero-valued filter fields match everything.
func (s *Store) FilteredProperties(f Filter) []model.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Property, 0, len(s.properties))
	for _, p := range s.properties {
		if p.Status != model.PropertyApproved {
			continue
		}
		if f.State != "" && p.Location.State != f.State {
			continue
		}
		if f.LGA != "" && p.Location.LGA != f.LGA {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}
