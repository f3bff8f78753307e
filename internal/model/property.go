// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including Property, User, ClientRequest, and visit tracking structures.
package model

// PropertyType is the transaction type of a listing.
type PropertyType string

// Transaction types.
const (
	TypeSale PropertyType = "For Sale"
	TypeRent PropertyType = "For Rent"
)

// PropertyCategory classifies a listing.
type PropertyCategory string

// Listing categories.
const (
	CategoryHouse      PropertyCategory = "House"
	CategoryLand       PropertyCategory = "Land"
	CategoryCommercial PropertyCategory = "Commercial"
)

// PropertyStatus is the moderation lifecycle state of a listing.
type PropertyStatus string

// Listing lifecycle states. A listing starts Pending and is only moved by an
// administrator decision.
const (
	PropertyPending  PropertyStatus = "Pending"
	PropertyApproved PropertyStatus = "Approved"
	PropertyRejected PropertyStatus = "Rejected"
)

// UnknownLocationValue is the sentinel used when a stored row has no location.
const UnknownLocationValue = "Unknown"

// Location is the place a property sits: state, local government area and
// street address. All three are required; missing data is normalized to the
// "Unknown" sentinel on read.
type Location struct {
	State   string `json:"state"`
	LGA     string `json:"lga"`
	Address string `json:"address"`
}

// UnknownLocation returns the sentinel location triple.
func UnknownLocation() Location {
	return Location{State: UnknownLocationValue, LGA: UnknownLocationValue, Address: UnknownLocationValue}
}

// Property is a marketplace listing.
//
// ID is always a string, regardless of the remote store's native key type.
// Images is never nil after normalization; the first element is the cover.
type Property struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Price        float64          `json:"price"`
	Location     Location         `json:"location"`
	Features     []string         `json:"features"`
	Type         PropertyType     `json:"type"`
	Category     PropertyCategory `json:"category"`
	Images       []string         `json:"images"`
	DateAdded    int64            `json:"dateAdded"` // epoch millis
	ContactPhone string           `json:"contactPhone"`
	Status       PropertyStatus   `json:"status"`
	AgentID      string           `json:"agentId,omitempty"`
}

// CoverImage returns the first image, or empty string for an imageless listing.
func (p *Property) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// PropertyPatch is a partial update to a listing. Nil fields are left untouched.
type PropertyPatch struct {
	Title        *string           `json:"title,omitempty"`
	Description  *string           `json:"description,omitempty"`
	Price        *float64          `json:"price,omitempty"`
	Location     *Location         `json:"location,omitempty"`
	Features     *[]string         `json:"features,omitempty"`
	Type         *PropertyType     `json:"type,omitempty"`
	Category     *PropertyCategory `json:"category,omitempty"`
	Images       *[]string         `json:"images,omitempty"`
	ContactPhone *string           `json:"contactPhone,omitempty"`
	Status       *PropertyStatus   `json:"status,omitempty"`
}

// Apply copies the non-nil patch fields onto the property.
func (patch PropertyPatch) Apply(p *Property) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.Features != nil {
		p.Features = *patch.Features
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
	if patch.ContactPhone != nil {
		p.ContactPhone = *patch.ContactPhone
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
}
