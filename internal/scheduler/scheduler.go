// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic background jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nesthub/nesthub-go/internal/geoip"
	"github.com/nesthub/nesthub-go/internal/sync"
)

// eventRetention is how long event log rows are kept.
const eventRetention = 90 * 24 * time.Hour

// Scheduler handles recurring maintenance: the synchronization sweep, GeoIP
// database reloads and event log retention.
type Scheduler struct {
	db     *sql.DB
	store  *sync.Store
	geo    *geoip.Lookup
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, store *sync.Store, geo *geoip.Lookup, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		store:  store,
		geo:    geo,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the jobs and begins the schedule.
func (s *Scheduler) Start() error {
	// Refresh sweep every minute. Change notifications normally keep the
	// store current; the sweep recovers from any missed notification.
	if _, err := s.cron.AddFunc("* * * * *", s.refreshSweep); err != nil {
		return err
	}

	// Event log retention, daily.
	if _, err := s.cron.AddFunc("30 2 * * *", s.pruneEvents); err != nil {
		return err
	}

	// Pick up replaced GeoIP database files, daily.
	if s.geo != nil && s.geo.IsEnabled() {
		if _, err := s.cron.AddFunc("0 3 * * *", s.reloadGeoIP); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) refreshSweep() {
	if s.store.DemoMode() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.store.RefreshAll(ctx)
}

func (s *Scheduler) pruneEvents() {
	cutoff := time.Now().Add(-eventRetention)
	res, err := s.db.Exec(`DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		s.logger.Error("event log prune failed", "error", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Info("pruned event log", "removed", n)
	}
}

func (s *Scheduler) reloadGeoIP() {
	if err := s.geo.Reload(); err != nil {
		s.logger.Error("GeoIP reload failed", "error", err)
	}
}
