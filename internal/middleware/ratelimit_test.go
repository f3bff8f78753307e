// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGlobalRateLimiterPerIP(t *testing.T) {
	rl := NewGlobalRateLimiter(0.001, 2)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("exhausted IP = %d, want 429", code)
	}

	// A different IP has its own budget.
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("fresh IP = %d, want 200", code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{name: "X-Real-IP wins", realIP: "1.2.3.4", forwarded: "5.6.7.8", remoteAddr: "9.9.9.9:1234", want: "1.2.3.4"},
		{name: "X-Forwarded-For next", forwarded: "5.6.7.8", remoteAddr: "9.9.9.9:1234", want: "5.6.7.8"},
		{name: "RemoteAddr fallback", remoteAddr: "9.9.9.9:1234", want: "9.9.9.9:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	lc.get("a")
	lc.get("b")

	if lc.clearIfExceeds(10) {
		t.Error("cleared below the threshold")
	}
	if !lc.clearIfExceeds(1) {
		t.Error("did not clear above the threshold")
	}
}
