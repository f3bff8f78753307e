// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package sync

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesthub/nesthub-go/internal/auth"
	"github.com/nesthub/nesthub-go/internal/localstate"
	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/remote"
)

// kindError carries a pre-assigned classification for fault injection.
type kindError struct {
	kind remote.ErrorKind
}

func (e kindError) Error() string { return "injected " + e.kind.String() + " failure" }

type kindClassifier struct{}

func (kindClassifier) Classify(err error) remote.ErrorKind {
	if err == nil {
		return remote.ErrKindNone
	}
	var ke kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	if errors.Is(err, remote.ErrNotFound) {
		return remote.ErrKindNotFound
	}
	return remote.ErrKindGeneric
}

// fakeRemote is an in-memory remote.Service with per-method fault injection
// and call recording.
type fakeRemote struct {
	mu sync.Mutex

	properties []remote.PropertyRow
	users      []remote.UserRow
	requests   []remote.RequestRow

	failInsertProperty error
	failInsertLegacy   error
	failUpdateProperty error
	failDeleteProperty error
	failInsertUser     error
	failUpdateUser     error
	failInsertRequest  error
	failDeleteRequest  error

	legacyInserts  []remote.LegacyPropertyRecord
	propertyCalls  int
	onListProperty func()
}

func (f *fakeRemote) ListProperties(ctx context.Context) ([]remote.PropertyRow, error) {
	f.mu.Lock()
	rows := append([]remote.PropertyRow(nil), f.properties...)
	hook := f.onListProperty
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return rows, nil
}

func (f *fakeRemote) InsertProperty(ctx context.Context, p model.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.propertyCalls++
	if f.failInsertProperty != nil {
		return f.failInsertProperty
	}
	f.properties = append(f.properties, remote.PropertyRow{ID: p.ID, Title: p.Title})
	return nil
}

func (f *fakeRemote) InsertPropertyLegacy(ctx context.Context, rec remote.LegacyPropertyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsertLegacy != nil {
		return f.failInsertLegacy
	}
	f.legacyInserts = append(f.legacyInserts, rec)
	return nil
}

func (f *fakeRemote) UpdateProperty(ctx context.Context, id string, patch model.PropertyPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failUpdateProperty
}

func (f *fakeRemote) DeleteProperty(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failDeleteProperty
}

func (f *fakeRemote) ListUsers(ctx context.Context) ([]remote.UserRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remote.UserRow(nil), f.users...), nil
}

func (f *fakeRemote) InsertUser(ctx context.Context, u model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsertUser != nil {
		return f.failInsertUser
	}
	f.users = append(f.users, remote.UserRow{ID: u.ID, Email: u.Email, Status: string(u.Status)})
	return nil
}

func (f *fakeRemote) UpdateUser(ctx context.Context, id string, patch remote.UserPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failUpdateUser
}

func (f *fakeRemote) ListRequests(ctx context.Context) ([]remote.RequestRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remote.RequestRow(nil), f.requests...), nil
}

func (f *fakeRemote) InsertRequest(ctx context.Context, r model.ClientRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failInsertRequest
}

func (f *fakeRemote) DeleteRequest(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failDeleteRequest
}

func (f *fakeRemote) InsertVisit(ctx context.Context, v model.Visit) error { return nil }

func (f *fakeRemote) Subscribe(fn func(remote.Change)) func() { return func() {} }

func newTestStore(t *testing.T, fake *fakeRemote) *Store {
	t.Helper()
	local, err := localstate.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return New(fake, kindClassifier{}, local, false)
}

func TestNormalizeProperty(t *testing.T) {
	tests := []struct {
		name string
		row  remote.PropertyRow
		want func(t *testing.T, p model.Property)
	}{
		{
			name: "numeric id becomes plain string",
			row:  remote.PropertyRow{ID: float64(42)},
			want: func(t *testing.T, p model.Property) {
				assert.Equal(t, "42", p.ID)
			},
		},
		{
			name: "legacy single image becomes one-element list",
			row:  remote.PropertyRow{ID: "1", ImageURL: "x.jpg"},
			want: func(t *testing.T, p model.Property) {
				assert.Equal(t, []string{"x.jpg"}, p.Images)
			},
		},
		{
			name: "image list wins over legacy column",
			row:  remote.PropertyRow{ID: "1", Images: []string{"a.jpg", "b.jpg"}, ImageURL: "x.jpg"},
			want: func(t *testing.T, p model.Property) {
				assert.Equal(t, []string{"a.jpg", "b.jpg"}, p.Images)
			},
		},
		{
			name: "missing collections default to empty, never nil",
			row:  remote.PropertyRow{ID: "1"},
			want: func(t *testing.T, p model.Property) {
				assert.NotNil(t, p.Images)
				assert.NotNil(t, p.Features)
				assert.Empty(t, p.Images)
			},
		},
		{
			name: "missing location becomes the Unknown sentinel",
			row:  remote.PropertyRow{ID: "1"},
			want: func(t *testing.T, p model.Property) {
				assert.Equal(t, model.UnknownLocation(), p.Location)
			},
		},
		{
			name: "numeric agent id becomes plain string",
			row:  remote.PropertyRow{ID: "1", AgentID: float64(7)},
			want: func(t *testing.T, p model.Property) {
				assert.Equal(t, "7", p.AgentID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, normalizeProperty(tt.row))
		})
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	fake := &fakeRemote{properties: []remote.PropertyRow{
		{ID: float64(2), Title: "Second"},
		{ID: "1", Title: "First", ImageURL: "x.jpg"},
	}}
	s := newTestStore(t, fake)

	s.RefreshAll(context.Background())

	props := s.Properties()
	require.Len(t, props, 2)
	assert.Equal(t, "2", props[0].ID)
	assert.Equal(t, []string{"x.jpg"}, props[1].Images)
	assert.True(t, s.Online())

	fake.mu.Lock()
	fake.properties = []remote.PropertyRow{{ID: "9", Title: "Only"}}
	fake.mu.Unlock()

	s.RefreshAll(context.Background())
	props = s.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, "9", props[0].ID)
}

func TestRefreshDiscardsStaleSnapshot(t *testing.T) {
	fake := &fakeRemote{properties: []remote.PropertyRow{{ID: "old", Title: "Old"}}}
	s := newTestStore(t, fake)

	// A local write lands while the bulk read is in flight. The fetched
	// snapshot predates the write and must not clobber it.
	fake.onListProperty = func() {
		fake.mu.Lock()
		fake.onListProperty = nil
		fake.mu.Unlock()
		_, res := s.CreateProperty(context.Background(), model.Property{Title: "Fresh"})
		require.True(t, res.OK)
	}

	s.refreshCollection(context.Background(), remote.CollectionProperties)

	props := s.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, "Fresh", props[0].Title)
}

func TestCreatePropertyPrepends(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)
	s.mu.Lock()
	s.properties = []model.Property{{ID: "existing"}}
	s.mu.Unlock()

	created, res := s.CreateProperty(context.Background(), model.Property{
		Title:   "New Listing",
		Images:  []string{"a.jpg", "b.jpg"},
		AgentID: "agent-1",
	})
	require.True(t, res.OK)
	assert.Equal(t, model.PropertyPending, created.Status)
	assert.NotEmpty(t, created.ID)

	props := s.Properties()
	require.Len(t, props, 2)
	assert.Equal(t, created.ID, props[0].ID)
	assert.Equal(t, "existing", props[1].ID)
}

func TestCreatePropertySchemaFallback(t *testing.T) {
	fake := &fakeRemote{failInsertProperty: kindError{remote.ErrKindSchemaMismatch}}
	s := newTestStore(t, fake)

	created, res := s.CreateProperty(context.Background(), model.Property{
		Title:   "Fallback Listing",
		Images:  []string{"a.jpg", "b.jpg", "c.jpg"},
		AgentID: "agent-1",
	})
	require.True(t, res.OK)

	// The sanitized retry carried only the cover image and no attribution.
	require.Len(t, fake.legacyInserts, 1)
	assert.Equal(t, "a.jpg", fake.legacyInserts[0].ImageURL)

	// The in-memory record keeps the full shape regardless.
	props := s.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, props[0].Images)
	assert.Equal(t, "agent-1", props[0].AgentID)
	assert.Equal(t, created.ID, props[0].ID)
}

func TestCreatePropertyFailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		insert  error
		legacy  error
		wantMsg string
	}{
		{
			name:    "permission denied",
			insert:  kindError{remote.ErrKindPermissionDenied},
			wantMsg: "Submission was blocked by storage permissions. Contact an administrator.",
		},
		{
			name:    "generic failure",
			insert:  kindError{remote.ErrKindGeneric},
			wantMsg: "Failed to publish the listing. Please try again later.",
		},
		{
			name:    "schema mismatch without fallback column support",
			insert:  kindError{remote.ErrKindSchemaMismatch},
			legacy:  kindError{remote.ErrKindSchemaMismatch},
			wantMsg: "The listing store schema is outdated (missing columns). Contact an administrator.",
		},
		{
			// The sanitized retry failing for an unrelated reason still
			// points at the schema mismatch that triggered the retry.
			name:    "fallback fails for another reason",
			insert:  kindError{remote.ErrKindSchemaMismatch},
			legacy:  kindError{remote.ErrKindGeneric},
			wantMsg: "The listing store schema is outdated (missing columns). Contact an administrator.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRemote{failInsertProperty: tt.insert, failInsertLegacy: tt.legacy}
			s := newTestStore(t, fake)

			_, res := s.CreateProperty(context.Background(), model.Property{Title: "Doomed"})
			assert.False(t, res.OK)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.Empty(t, s.Properties(), "failed submission must not land locally")
		})
	}
}

func TestCreatePropertyDemoMode(t *testing.T) {
	local, err := localstate.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	s := New(nil, kindClassifier{}, local, true)
	require.NoError(t, s.Start(context.Background()))

	created, res := s.CreateProperty(context.Background(), model.Property{Title: "Demo"})
	require.True(t, res.OK)

	props := s.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, created.ID, props[0].ID)
	assert.False(t, s.Online())
}

func TestUpdatePropertyKeepsLocalOnFailure(t *testing.T) {
	fake := &fakeRemote{failUpdateProperty: kindError{remote.ErrKindGeneric}}
	s := newTestStore(t, fake)
	s.mu.Lock()
	s.properties = []model.Property{{ID: "p1", Title: "Before"}}
	s.mu.Unlock()

	title := "After"
	ok := s.UpdateProperty(context.Background(), "p1", model.PropertyPatch{Title: &title})
	assert.False(t, ok, "a failed remote write must be reported")

	// The optimistic local change survives the remote failure.
	props := s.Properties()
	assert.Equal(t, "After", props[0].Title)

	assert.False(t, s.UpdateProperty(context.Background(), "missing", model.PropertyPatch{Title: &title}))
}

func TestUpdateUserIgnoresRemoteFailure(t *testing.T) {
	fake := &fakeRemote{failUpdateUser: kindError{remote.ErrKindGeneric}}
	s := newTestStore(t, fake)
	s.mu.Lock()
	s.users = []model.User{{ID: "u1", Phone: "0700"}}
	s.mu.Unlock()

	// Profile edits are fire-and-forget; the remote failure is logged only.
	phone := "0801"
	ok := s.UpdateUser(context.Background(), "u1", remote.UserPatch{Phone: &phone})
	assert.True(t, ok)

	users := s.Users()
	assert.Equal(t, "0801", users[0].Phone)

	assert.False(t, s.UpdateUser(context.Background(), "missing", remote.UserPatch{Phone: &phone}))
}

func TestDeletePropertyRollsBackOnFailure(t *testing.T) {
	fake := &fakeRemote{failDeleteProperty: kindError{remote.ErrKindGeneric}}
	s := newTestStore(t, fake)
	before := []model.Property{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}
	s.mu.Lock()
	s.properties = append([]model.Property(nil), before...)
	s.mu.Unlock()

	ok := s.DeleteProperty(context.Background(), "p2")
	assert.False(t, ok)
	assert.Equal(t, before, s.Properties(), "rollback must restore the exact prior state")

	fake.mu.Lock()
	fake.failDeleteProperty = nil
	fake.mu.Unlock()
	assert.True(t, s.DeleteProperty(context.Background(), "p2"))
	assert.Equal(t, []model.Property{{ID: "p1"}, {ID: "p3"}}, s.Properties())
}

func TestSetPropertyStatusNeverRollsBack(t *testing.T) {
	fake := &fakeRemote{failUpdateProperty: kindError{remote.ErrKindGeneric}}
	s := newTestStore(t, fake)
	s.mu.Lock()
	s.properties = []model.Property{{ID: "p1", Status: model.PropertyPending}}
	s.mu.Unlock()

	s.SetPropertyStatus(context.Background(), "p1", model.PropertyApproved)
	assert.Equal(t, model.PropertyApproved, s.Properties()[0].Status)
}

func TestRegisterUserAppendsAtEnd(t *testing.T) {
	fake := &fakeRemote{failInsertUser: kindError{remote.ErrKindGeneric}}
	s := newTestStore(t, fake)
	s.mu.Lock()
	s.users = []model.User{{ID: "u1"}}
	s.mu.Unlock()

	// Registration succeeds even though the remote write failed.
	u, err := s.RegisterUser(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserPending, u.Status)
	assert.NotEmpty(t, u.ID)

	ok, err := auth.CheckPassword("s3cret", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	users := s.Users()
	require.Len(t, users, 2)
	assert.Equal(t, u.ID, users[1].ID, "registrations append to the end")
}

func TestLogin(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	s.mu.Lock()
	s.users = []model.User{{ID: "u1", Email: "Ada@Example.com", PasswordHash: hash, Status: model.UserApproved}}
	s.mu.Unlock()

	// Email match is case-insensitive.
	u, ok := s.Login("ada@EXAMPLE.com", "correct-horse")
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)

	got, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)

	// The session is persisted for restarts.
	persisted, err := s.local.SessionUser()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "u1", persisted.ID)

	s.Logout()
	persisted, err = s.local.SessionUser()
	require.NoError(t, err)
	assert.Nil(t, persisted)
	_, ok = s.CurrentUser()
	assert.False(t, ok)

	_, ok = s.Login("ada@example.com", "wrong")
	assert.False(t, ok)
	_, ok = s.Login("nobody@example.com", "correct-horse")
	assert.False(t, ok)
}

func TestSessionReconciliation(t *testing.T) {
	fake := &fakeRemote{}
	s := newTestStore(t, fake)

	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	s.mu.Lock()
	s.users = []model.User{{ID: "u1", Email: "ada@example.com", PasswordHash: hash, Status: model.UserPending}}
	s.mu.Unlock()

	_, ok := s.Login("ada@example.com", "pw")
	require.True(t, ok)

	// The refreshed collection carries an approval; the session follows it.
	fake.mu.Lock()
	fake.users = []remote.UserRow{{ID: "u1", Email: "ada@example.com", PasswordHash: hash, Status: string(model.UserApproved)}}
	fake.mu.Unlock()
	s.refreshCollection(context.Background(), remote.CollectionUsers)

	u, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, model.UserApproved, u.Status)

	// The record disappears remotely; the session is terminated.
	fake.mu.Lock()
	fake.users = nil
	fake.mu.Unlock()
	s.refreshCollection(context.Background(), remote.CollectionUsers)

	_, ok = s.CurrentUser()
	assert.False(t, ok)
}

func TestAccessCodes(t *testing.T) {
	local, err := localstate.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	s := New(&fakeRemote{}, kindClassifier{}, local, false)
	require.NoError(t, s.restoreLocalState())

	assert.True(t, s.VerifyAdminCode(DefaultAdminCode))
	assert.True(t, s.VerifyPublisherCode(DefaultPublisherCode))
	assert.False(t, s.VerifyAdminCode("wrong"))

	require.NoError(t, s.SetAdminCode("new-admin"))
	assert.False(t, s.VerifyAdminCode(DefaultAdminCode))
	assert.True(t, s.VerifyAdminCode("new-admin"))

	// Changed codes survive a restart; the untouched one keeps its default.
	s2 := New(&fakeRemote{}, kindClassifier{}, local, false)
	require.NoError(t, s2.restoreLocalState())
	assert.True(t, s2.VerifyAdminCode("new-admin"))
	assert.True(t, s2.VerifyPublisherCode(DefaultPublisherCode))
}

func TestAddRequestSnapshots(t *testing.T) {
	fake := &fakeRemote{failInsertRequest: kindError{remote.ErrKindGeneric}}
	s := newTestStore(t, fake)
	s.mu.Lock()
	s.properties = []model.Property{{
		ID:     "p1",
		Title:  "Snapshot Me",
		Price:  1000,
		Images: []string{"cover.jpg", "other.jpg"},
		Status: model.PropertyApproved,
	}}
	s.requests = []model.ClientRequest{{ID: "r0"}}
	s.mu.Unlock()

	// Succeeds despite the failed remote write.
	req, ok := s.AddRequest(context.Background(), RequestInput{PropertyID: "p1", ClientName: "Chidi"})
	require.True(t, ok)
	assert.Equal(t, "Snapshot Me", req.PropertyTitle)
	assert.Equal(t, "cover.jpg", req.PropertyImage)
	assert.Equal(t, float64(1000), req.PropertyPrice)

	reqs := s.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, req.ID, reqs[0].ID, "inquiries prepend")

	// The snapshot is immutable under later listing edits.
	title := "Renamed"
	require.True(t, s.UpdateProperty(context.Background(), "p1", model.PropertyPatch{Title: &title}))
	assert.Equal(t, "Snapshot Me", s.Requests()[0].PropertyTitle)

	_, ok = s.AddRequest(context.Background(), RequestInput{PropertyID: "missing"})
	assert.False(t, ok)
}

func TestDeleteRequestRollsBackOnFailure(t *testing.T) {
	fake := &fakeRemote{failDeleteRequest: kindError{remote.ErrKindGeneric}}
	s := newTestStore(t, fake)
	before := []model.ClientRequest{{ID: "r1"}, {ID: "r2"}}
	s.mu.Lock()
	s.requests = append([]model.ClientRequest(nil), before...)
	s.mu.Unlock()

	assert.False(t, s.DeleteRequest(context.Background(), "r1"))
	assert.Equal(t, before, s.Requests())
}

func TestFilteredProperties(t *testing.T) {
	s := newTestStore(t, &fakeRemote{})
	s.mu.Lock()
	s.properties = []model.Property{
		{ID: "1", Status: model.PropertyApproved, Location: model.Location{State: "Lagos", LGA: "Ikeja"}, Type: model.TypeSale, Category: model.CategoryHouse},
		{ID: "2", Status: model.PropertyApproved, Location: model.Location{State: "FCT", LGA: "Abuja Municipal"}, Type: model.TypeRent, Category: model.CategoryHouse},
		{ID: "3", Status: model.PropertyPending, Location: model.Location{State: "Lagos", LGA: "Ikeja"}, Type: model.TypeSale, Category: model.CategoryLand},
	}
	s.mu.Unlock()

	all := s.FilteredProperties(Filter{})
	require.Len(t, all, 2, "pending listings are never public")

	lagos := s.FilteredProperties(Filter{State: "Lagos"})
	require.Len(t, lagos, 1)
	assert.Equal(t, "1", lagos[0].ID)

	rentals := s.FilteredProperties(Filter{Type: model.TypeRent})
	require.Len(t, rentals, 1)
	assert.Equal(t, "2", rentals[0].ID)
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, PolicyRetrySanitized, PolicyFor(OpCreateProperty))
	assert.Equal(t, PolicyKeepLocal, PolicyFor(OpUpdateProperty))
	assert.Equal(t, PolicyRollback, PolicyFor(OpDeleteProperty))
	assert.Equal(t, PolicyLogOnly, PolicyFor(OpSetPropertyStatus))
	assert.Equal(t, PolicyLogOnly, PolicyFor(OpRegisterUser))
	assert.Equal(t, PolicyLogOnly, PolicyFor(OpUpdateUser))
	assert.Equal(t, PolicyLogOnly, PolicyFor(OpSetUserStatus))
	assert.Equal(t, PolicyLogOnly, PolicyFor(OpAddRequest))
	assert.Equal(t, PolicyRollback, PolicyFor(OpDeleteRequest))
}
