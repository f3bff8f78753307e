// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package sync

import (
	"fmt"
	"strconv"

	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/remote"
)

// normalizeID converts a remote identifier of any native type to its string
// form. Numeric identifiers never pick up an exponent or trailing decimals,
// so a row stored with id 42 compares equal to the string "42".
func normalizeID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

// normalizeProperty converts a stored row to the domain model:
// string identifier, images from the array or the legacy single-image column,
// non-nil features and the Unknown location sentinel for rows without one.
func normalizeProperty(r remote.PropertyRow) model.Property {
	p := model.Property{
		ID:           normalizeID(r.ID),
		Title:        r.Title,
		Description:  r.Description,
		Price:        r.Price,
		Features:     []string{},
		Type:         model.PropertyType(r.Type),
		Category:     model.PropertyCategory(r.Category),
		Images:       []string{},
		DateAdded:    r.DateAdded,
		ContactPhone: r.ContactPhone,
		Status:       model.PropertyStatus(r.Status),
		AgentID:      normalizeID(r.AgentID),
	}

	if r.Location != nil {
		p.Location = *r.Location
	} else {
		p.Location = model.UnknownLocation()
	}

	if len(r.Features) > 0 {
		p.Features = append(p.Features, r.Features...)
	}

	switch {
	case len(r.Images) > 0:
		p.Images = append(p.Images, r.Images...)
	case r.ImageURL != "":
		p.Images = append(p.Images, r.ImageURL)
	}

	return p
}

func normalizeUser(r remote.UserRow) model.User {
	return model.User{
		ID:            normalizeID(r.ID),
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		BusinessName:  r.BusinessName,
		State:         r.State,
		PasswordHash:  r.PasswordHash,
		PassportURL:   r.PassportURL,
		Status:        model.UserStatus(r.Status),
		DateRequested: r.DateRequested,
	}
}

func normalizeRequest(r remote.RequestRow) model.ClientRequest {
	return model.ClientRequest{
		ID:            normalizeID(r.ID),
		PropertyID:    normalizeID(r.PropertyID),
		PropertyTitle: r.PropertyTitle,
		PropertyImage: r.PropertyImage,
		PropertyPrice: r.PropertyPrice,
		ClientName:    r.ClientName,
		ClientAddress: r.ClientAddress,
		ClientEmail:   r.ClientEmail,
		ClientPhone:   r.ClientPhone,
		ClientState:   r.ClientState,
		ClientLGA:     r.ClientLGA,
		DateRequested: r.DateRequested,
	}
}
