package config

import (
	"testing"
)

func TestLoad_RequiresSessionSecret(t *testing.T) {
	t.Setenv("NESTHUB_SESSION_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when session secret is missing")
	}
}

func TestLoad_RejectsShortSecret(t *testing.T) {
	t.Setenv("NESTHUB_SESSION_SECRET", "too-short")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for short session secret")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NESTHUB_SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr = %q, want localhost:8080", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode by default")
	}
	if cfg.UseRedisCache() {
		t.Error("redis cache should be off by default")
	}
	if cfg.AIEnabled() {
		t.Error("AI should be off without an API key")
	}
}
