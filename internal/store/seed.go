// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/nesthub/nesthub-go/internal/auth"
)

// Seed inserts demo marketplace content when enabled and the database is
// empty. Idempotent: a non-empty properties table short-circuits.
func Seed(ctx context.Context, db *sql.DB, enabled bool) error {
	if !enabled {
		return nil
	}

	var count int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&count); err != nil {
		return fmt.Errorf("counting properties: %w", err)
	}
	if count > 0 {
		slog.Debug("seed skipped, properties table not empty", "count", count)
		return nil
	}

	now := time.Now().UnixMilli()

	hash, err := auth.HashPassword("changeme")
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, business_name, state, password_hash, status, date_requested)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fmt.Sprint(now), "Ada Realty", "ada@example.com", "+2348012345678",
		"Ada Realty Ltd", "Lagos", hash, "Approved", now,
	)
	if err != nil {
		return fmt.Errorf("seeding user: %w", err)
	}

	listings := []struct {
		id, title, state, lga, address, typ, category, status string
		price                                                 float64
	}{
		{fmt.Sprint(now + 1), "4 Bedroom Duplex in Lekki Phase 1", "Lagos", "Eti-Osa", "12 Admiralty Way", "For Sale", "House", "Approved", 185_000_000},
		{fmt.Sprint(now + 2), "Half Plot of Land, Epe Expressway", "Lagos", "Epe", "Km 42 Lekki-Epe Expressway", "For Sale", "Land", "Approved", 9_500_000},
		{fmt.Sprint(now + 3), "2 Bedroom Flat, Wuse Zone 4", "FCT", "Abuja Municipal", "7 Ibrahim Close", "For Rent", "House", "Pending", 2_400_000},
	}

	for _, l := range listings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO properties (id, title, description, price, loc_state, loc_lga, loc_address,
				features, type, category, images, date_added, contact_phone, status, agent_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.id, l.title, "Well finished and fully serviced.", l.price,
			l.state, l.lga, l.address,
			`["All rooms en suite","Fitted kitchen"]`, l.typ, l.category,
			`[]`, now, "+2348012345678", l.status, fmt.Sprint(now),
		)
		if err != nil {
			return fmt.Errorf("seeding property %s: %w", l.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	slog.Info("seeded demo content", "properties", len(listings), "users", 1)
	return nil
}
