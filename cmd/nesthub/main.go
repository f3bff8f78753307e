// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// NestHub is a real estate marketplace server: public listing browsing,
// agent publishing with moderation, and client inquiries, backed by a
// synchronized data layer that keeps working when the store misbehaves.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/nesthub/nesthub-go/internal/ai"
	"github.com/nesthub/nesthub-go/internal/cache"
	"github.com/nesthub/nesthub-go/internal/config"
	"github.com/nesthub/nesthub-go/internal/geoip"
	"github.com/nesthub/nesthub-go/internal/handler"
	"github.com/nesthub/nesthub-go/internal/localstate"
	"github.com/nesthub/nesthub-go/internal/logging"
	"github.com/nesthub/nesthub-go/internal/media"
	"github.com/nesthub/nesthub-go/internal/middleware"
	"github.com/nesthub/nesthub-go/internal/remote"
	"github.com/nesthub/nesthub-go/internal/scheduler"
	"github.com/nesthub/nesthub-go/internal/session"
	"github.com/nesthub/nesthub-go/internal/store"
	appsync "github.com/nesthub/nesthub-go/internal/sync"
	"github.com/nesthub/nesthub-go/internal/version"
	"github.com/nesthub/nesthub-go/internal/visits"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "NestHub - Real Estate Marketplace\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NESTHUB_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NESTHUB_DB_PATH          SQLite database path (default: ./data/nesthub.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NESTHUB_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NESTHUB_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NESTHUB_DEMO_MODE        Run without a backing store, in-memory only (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NESTHUB_REDIS_URL        Redis URL for the listings cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NESTHUB_OPENAI_API_KEY   Enables AI listing descriptions (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("nesthub %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (for development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directories exist
	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.DataDir, cfg.UploadsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	// Local state: session identity and access codes survive restarts here
	local, err := localstate.NewFileStore(localstate.DefaultPath(cfg.DataDir))
	if err != nil {
		return fmt.Errorf("opening local state: %w", err)
	}

	// Synchronized store. In demo mode the remote service stays nil and
	// everything lives in memory only.
	var (
		svc        remote.Service
		classifier remote.Classifier
	)
	if !cfg.DemoMode {
		svc = remote.NewSQLite(db)
		classifier = remote.SQLiteClassifier{}
	} else {
		slog.Info("demo mode enabled, backing store disabled")
	}

	syncStore := appsync.New(svc, classifier, local, cfg.DemoMode)
	if err := syncStore.Start(ctx); err != nil {
		return fmt.Errorf("starting sync store: %w", err)
	}
	defer syncStore.Stop()

	// Listings cache: Redis when configured, in-memory otherwise
	listingCache := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	defer func() {
		if err := listingCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	// GeoIP for visit logging
	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("GeoIP disabled", "error", err)
		}
	}
	defer func() { _ = geo.Close() }()

	var visitLog *visits.Logger
	if svc != nil {
		visitLog = visits.NewLogger(svc, geo)
	}

	// Background jobs
	sched := scheduler.New(db, syncStore, geo, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Sessions
	sessions := session.New(db, cfg.IsDevelopment())

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	describer := ai.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if describer.Enabled() {
		slog.Info("AI description generation enabled", "model", cfg.OpenAIModel)
	}

	h := handler.New(
		syncStore,
		sessions,
		loginProtection,
		listingCache,
		media.NewProcessor(),
		media.NewStorage(cfg.UploadsDir, cfg.PublicBaseURL),
		describer,
		visitLog,
		versionInfo,
	)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))
	r.Use(sessions.LoadAndSave)

	rateLimiter := middleware.NewGlobalRateLimiter(20, 40)
	r.Use(rateLimiter.Middleware())

	h.Routes(r)

	// Uploaded photos
	uploadsDir, err := filepath.Abs(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("resolving uploads directory: %w", err)
	}
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(uploadsDir))))

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "demo", cfg.DemoMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
