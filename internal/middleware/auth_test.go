// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/nesthub/nesthub-go/internal/localstate"
	"github.com/nesthub/nesthub-go/internal/session"
	appsync "github.com/nesthub/nesthub-go/internal/sync"
)

func newDemoStore(t *testing.T) *appsync.Store {
	t.Helper()

	local, err := localstate.NewFileStore(filepath.Join(t.TempDir(), "localstate.json"))
	if err != nil {
		t.Fatal(err)
	}
	store := appsync.New(nil, nil, local, true)
	if err := store.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(store.Stop)
	return store
}

func TestRequireAgent(t *testing.T) {
	store := newDemoStore(t)
	agent, err := store.RegisterUser(context.Background(), appsync.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatal(err)
	}

	sm := scs.New()
	mux := http.NewServeMux()
	mux.HandleFunc("/signin", func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), session.KeyUserID, agent.ID)
	})
	mux.Handle("/protected", RequireAgent(sm, store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := GetAgent(r)
		if got == nil || got.ID != agent.ID {
			t.Errorf("GetAgent = %+v, want agent %s", got, agent.ID)
		}
	})))
	handler := sm.LoadAndSave(mux)

	// No session.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no session = %d, want 401", rec.Code)
	}

	// Establish a session, then use it.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signin", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie issued")
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with session = %d, want 200", rec.Code)
	}
}

func TestRequireAdminCode(t *testing.T) {
	store := newDemoStore(t)

	handler := RequireAdminCode(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		code string
		want int
	}{
		{name: "valid code", code: appsync.DefaultAdminCode, want: http.StatusOK},
		{name: "wrong code", code: "nope", want: http.StatusForbidden},
		{name: "missing code", code: "", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.code != "" {
				req.Header.Set(HeaderAdminCode, tt.code)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
