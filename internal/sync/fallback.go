// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package sync

import (
	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/remote"
)

// sanitizeForLegacySchema reduces a listing to the column set a
// previous-generation database understands: agent attribution is dropped and
// the images array collapses to its first element. The full record is kept
// in memory regardless of which write shape landed remotely.
func sanitizeForLegacySchema(p model.Property) remote.LegacyPropertyRecord {
	return remote.LegacyPropertyRecord{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		Location:     p.Location,
		Features:     p.Features,
		Type:         p.Type,
		Category:     p.Category,
		ImageURL:     p.CoverImage(),
		DateAdded:    p.DateAdded,
		ContactPhone: p.ContactPhone,
		Status:       p.Status,
	}
}
