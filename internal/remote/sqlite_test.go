// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/store"
)

func newTestService(t *testing.T, legacy bool) *SQLite {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if legacy {
		require.NoError(t, store.MigrateTo(db, 1))
	} else {
		require.NoError(t, store.Migrate(db))
	}

	return NewSQLite(db)
}

func testProperty(id string) model.Property {
	return model.Property{
		ID:           id,
		Title:        "3 Bedroom Bungalow",
		Description:  "Newly built.",
		Price:        45_000_000,
		Location:     model.Location{State: "Lagos", LGA: "Ikeja", Address: "5 Allen Avenue"},
		Features:     []string{"Borehole", "Gated estate"},
		Type:         model.TypeSale,
		Category:     model.CategoryHouse,
		Images:       []string{"a.jpg", "b.jpg"},
		DateAdded:    time.Now().UnixMilli(),
		ContactPhone: "+2348000000000",
		Status:       model.PropertyPending,
		AgentID:      "agent-1",
	}
}

func TestSQLiteInsertAndListProperties(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	p1 := testProperty("p1")
	p2 := testProperty("p2")
	p2.DateAdded = p1.DateAdded + 1000

	require.NoError(t, svc.InsertProperty(ctx, p1))
	require.NoError(t, svc.InsertProperty(ctx, p2))

	rows, err := svc.ListProperties(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, "p2", rows[0].ID)
	assert.Equal(t, "p1", rows[1].ID)

	got := rows[1]
	assert.Equal(t, p1.Title, got.Title)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, got.Images)
	assert.Equal(t, []string{"Borehole", "Gated estate"}, got.Features)
	assert.Equal(t, "agent-1", got.AgentID)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Ikeja", got.Location.LGA)
}

func TestSQLiteInsertPropertyLegacySchema(t *testing.T) {
	svc := newTestService(t, true)
	ctx := context.Background()

	// The modern insert references columns the legacy schema lacks.
	err := svc.InsertProperty(ctx, testProperty("p1"))
	require.Error(t, err)
	assert.Equal(t, ErrKindSchemaMismatch, svc.classify.Classify(err))

	rec := LegacyPropertyRecord{
		ID:        "p1",
		Title:     "3 Bedroom Bungalow",
		Price:     45_000_000,
		Location:  model.Location{State: "Lagos", LGA: "Ikeja", Address: "5 Allen Avenue"},
		Features:  []string{"Borehole"},
		Type:      model.TypeSale,
		Category:  model.CategoryHouse,
		ImageURL:  "a.jpg",
		DateAdded: time.Now().UnixMilli(),
		Status:    model.PropertyPending,
	}
	require.NoError(t, svc.InsertPropertyLegacy(ctx, rec))

	rows, err := svc.ListProperties(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a.jpg", rows[0].ImageURL)
	assert.Nil(t, rows[0].Images)
	assert.Nil(t, rows[0].AgentID)
}

func TestSQLiteUpdateProperty(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.InsertProperty(ctx, testProperty("p1")))

	title := "Reduced: 3 Bedroom Bungalow"
	status := model.PropertyApproved
	images := []string{"c.jpg"}
	err := svc.UpdateProperty(ctx, "p1", model.PropertyPatch{
		Title:  &title,
		Status: &status,
		Images: &images,
	})
	require.NoError(t, err)

	rows, err := svc.ListProperties(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, title, rows[0].Title)
	assert.Equal(t, string(model.PropertyApproved), rows[0].Status)
	assert.Equal(t, []string{"c.jpg"}, rows[0].Images)

	err = svc.UpdateProperty(ctx, "missing", model.PropertyPatch{Title: &title})
	require.Error(t, err)
	assert.Equal(t, ErrKindNotFound, svc.classify.Classify(err))
}

func TestSQLiteDeleteProperty(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.InsertProperty(ctx, testProperty("p1")))
	require.NoError(t, svc.DeleteProperty(ctx, "p1"))

	rows, err := svc.ListProperties(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Deleting an absent row is not an error.
	require.NoError(t, svc.DeleteProperty(ctx, "p1"))
}

func TestSQLiteUsers(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	u := model.User{
		ID:            "u1",
		Name:          "Ada",
		Email:         "ada@example.com",
		Phone:         "+2348000000000",
		BusinessName:  "Ada Realty",
		State:         "Lagos",
		PasswordHash:  "$argon2id$...",
		Status:        model.UserPending,
		DateRequested: time.Now().UnixMilli(),
	}
	require.NoError(t, svc.InsertUser(ctx, u))

	status := model.UserApproved
	require.NoError(t, svc.UpdateUser(ctx, "u1", UserPatch{Status: &status}))

	rows, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "u1", rows[0].ID)
	assert.Equal(t, string(model.UserApproved), rows[0].Status)
	assert.Equal(t, "$argon2id$...", rows[0].PasswordHash)

	err = svc.UpdateUser(ctx, "missing", UserPatch{Status: &status})
	require.Error(t, err)
}

func TestSQLiteRequests(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	r := model.ClientRequest{
		ID:            "r1",
		PropertyID:    "p1",
		PropertyTitle: "3 Bedroom Bungalow",
		PropertyPrice: 45_000_000,
		ClientName:    "Chidi",
		ClientEmail:   "chidi@example.com",
		ClientPhone:   "+2348111111111",
		ClientState:   "Lagos",
		ClientLGA:     "Ikeja",
		DateRequested: time.Now().UnixMilli(),
	}
	require.NoError(t, svc.InsertRequest(ctx, r))

	rows, err := svc.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r1", rows[0].ID)
	assert.Equal(t, "p1", rows[0].PropertyID)

	require.NoError(t, svc.DeleteRequest(ctx, "r1"))
	rows, err = svc.ListRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSQLiteSubscribe(t *testing.T) {
	svc := newTestService(t, false)
	ctx := context.Background()

	ch := make(chan Change, 1)
	unsub := svc.Subscribe(func(c Change) { ch <- c })
	defer unsub()

	require.NoError(t, svc.InsertProperty(ctx, testProperty("p1")))

	select {
	case c := <-ch:
		assert.Equal(t, CollectionProperties, c.Collection)
		assert.Equal(t, OpInsert, c.Op)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification received")
	}

	unsub()
	require.NoError(t, svc.DeleteProperty(ctx, "p1"))
	select {
	case <-ch:
		t.Fatal("notification after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}
