// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// ClientRequest is an inbound inquiry tied to exactly one property at
// creation time. PropertyTitle, PropertyImage and PropertyPrice are a
// snapshot captured at submission; they are immutable afterwards even if the
// referenced listing changes or is deleted.
type ClientRequest struct {
	ID            string  `json:"id"`
	PropertyID    string  `json:"propertyId"`
	PropertyTitle string  `json:"propertyTitle"`
	PropertyImage string  `json:"propertyImage"`
	PropertyPrice float64 `json:"propertyPrice"`
	ClientName    string  `json:"clientName"`
	ClientAddress string  `json:"clientAddress"`
	ClientEmail   string  `json:"clientEmail"`
	ClientPhone   string  `json:"clientPhone"`
	ClientState   string  `json:"clientState"`
	ClientLGA     string  `json:"clientLga"`
	DateRequested int64   `json:"dateRequested"` // epoch millis
}

// SnapshotFrom fills the denormalized property fields from a listing.
func (r *ClientRequest) SnapshotFrom(p *Property) {
	r.PropertyID = p.ID
	r.PropertyTitle = p.Title
	r.PropertyImage = p.CoverImage()
	r.PropertyPrice = p.Price
}
