// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package ai

import (
	"context"
	"testing"
)

func TestDisabledGeneratorFallsBack(t *testing.T) {
	g := NewGenerator("", "gpt-4o-mini")
	if g.Enabled() {
		t.Fatal("generator without API key must be disabled")
	}
	if got := g.Describe(context.Background(), "t", "For Sale", "Lagos", "pool"); got != FallbackFailed {
		t.Errorf("Describe = %q, want fallback", got)
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"one two three", 5, "one two three"},
		{"one two three", 3, "one two three"},
		{"one two three four", 2, "one two..."},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := TruncateWords(tt.in, tt.n); got != tt.want {
			t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
