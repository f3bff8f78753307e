// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nesthub/nesthub-go/internal/content"
	"github.com/nesthub/nesthub-go/internal/model"
	"github.com/nesthub/nesthub-go/internal/util"
)

const listingCacheTTL = 30 * time.Second

// propertyView is a listing as served to clients, with the description
// rendered to sanitized HTML alongside the raw markdown and a URL slug
// derived from the title.
type propertyView struct {
	model.Property
	Slug            string `json:"slug"`
	DescriptionHTML string `json:"descriptionHtml,omitempty"`
}

func viewOf(p model.Property) propertyView {
	v := propertyView{Property: p, Slug: util.Slugify(p.Title)}
	if html, err := content.RenderDescription(p.Description); err == nil {
		v.DescriptionHTML = html
	}
	return v
}

func viewsOf(props []model.Property) []propertyView {
	views := make([]propertyView, 0, len(props))
	for _, p := range props {
		views = append(views, viewOf(p))
	}
	return views
}

// ListProperties returns approved listings, optionally filtered by state,
// LGA, transaction type and category. Responses are cached briefly.
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Query parameters override the store's default browsing filter.
	filter := h.store.Filter()
	if v := strings.TrimSpace(q.Get("state")); v != "" {
		filter.State = v
	}
	if v := strings.TrimSpace(q.Get("lga")); v != "" {
		filter.LGA = v
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		filter.Type = model.PropertyType(v)
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		filter.Category = model.PropertyCategory(v)
	}

	cacheKey := "listings:" + q.Encode()
	if cached, err := h.cache.Get(r.Context(), cacheKey); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(cached)
		return
	}

	views := viewsOf(h.store.FilteredProperties(filter))
	body, err := json.Marshal(Response{Data: views, Meta: &Meta{Total: len(views)}})
	if err != nil {
		WriteInternalError(w, "Failed to encode listings")
		return
	}

	if err := h.cache.Set(r.Context(), cacheKey, body, listingCacheTTL); err != nil {
		slog.Debug("listing cache set failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// GetProperty returns a single listing. Listings that are not approved are
// visible only to their owning agent or an administrator.
func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.store.PropertyByID(id)
	if !ok {
		WriteNotFound(w, "Listing not found")
		return
	}

	if p.Status != model.PropertyApproved {
		agent, _ := h.publisher(r)
		owner := agent != nil && agent.ID == p.AgentID
		if !owner && !h.isAdmin(r) {
			WriteNotFound(w, "Listing not found")
			return
		}
	}

	WriteSuccess(w, viewOf(p), nil)
}

// createPropertyRequest is the publish payload.
type createPropertyRequest struct {
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Price        float64                `json:"price"`
	Location     model.Location         `json:"location"`
	Features     []string               `json:"features"`
	Type         model.PropertyType     `json:"type"`
	Category     model.PropertyCategory `json:"category"`
	Images       []string               `json:"images"`
	ContactPhone string                 `json:"contactPhone"`
}

func (req *createPropertyRequest) validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(req.Title) == "" {
		errs["title"] = "Title is required"
	}
	if req.Price <= 0 {
		errs["price"] = "Price must be greater than zero"
	}
	switch req.Type {
	case model.TypeSale, model.TypeRent:
	default:
		errs["type"] = "Type must be 'For Sale' or 'For Rent'"
	}
	switch req.Category {
	case model.CategoryHouse, model.CategoryLand, model.CategoryCommercial:
	default:
		errs["category"] = "Category must be 'House', 'Land' or 'Commercial'"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// createPropertyResponse carries the stored listing and the outcome message.
type createPropertyResponse struct {
	Property propertyView `json:"property"`
	Message  string       `json:"message"`
}

// CreateProperty publishes a new listing. Requires an approved agent session
// or the publisher access code.
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	agent, ok := h.publisher(r)
	if !ok {
		WriteForbidden(w, "Publishing requires an approved agent account or a valid access code")
		return
	}

	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	draft := model.Property{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Price:        req.Price,
		Location:     req.Location,
		Features:     req.Features,
		Type:         req.Type,
		Category:     req.Category,
		Images:       req.Images,
		ContactPhone: strings.TrimSpace(req.ContactPhone),
	}
	if agent != nil {
		draft.AgentID = agent.ID
	}

	stored, res := h.store.CreateProperty(r.Context(), draft)
	if !res.OK {
		WriteError(w, http.StatusBadGateway, "publish_failed", res.Message, nil)
		return
	}

	h.invalidateListings(r)
	WriteCreated(w, createPropertyResponse{Property: viewOf(stored), Message: res.Message})
}

// UpdateProperty applies a partial update to a listing. Only the owning
// agent or an administrator may edit; moderation status changes go through
// the admin status endpoint instead.
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.store.PropertyByID(id)
	if !ok {
		WriteNotFound(w, "Listing not found")
		return
	}

	if !h.canManage(r, p) {
		WriteForbidden(w, "Only the listing owner or an administrator may edit a listing")
		return
	}

	var patch model.PropertyPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	patch.Status = nil

	if !h.store.UpdateProperty(r.Context(), id, patch) {
		if _, exists := h.store.PropertyByID(id); !exists {
			WriteNotFound(w, "Listing not found")
			return
		}
		// Remote write failed; the edit is kept locally (keep_local policy).
		h.invalidateListings(r)
		WriteError(w, http.StatusBadGateway, "update_failed",
			"The edit was saved locally but could not be synchronized", nil)
		return
	}

	h.invalidateListings(r)
	updated, _ := h.store.PropertyByID(id)
	WriteSuccess(w, viewOf(updated), nil)
}

// DeleteProperty removes a listing. Only the owning agent or an
// administrator may delete.
func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.store.PropertyByID(id)
	if !ok {
		WriteNotFound(w, "Listing not found")
		return
	}

	if !h.canManage(r, p) {
		WriteForbidden(w, "Only the listing owner or an administrator may delete a listing")
		return
	}

	if !h.store.DeleteProperty(r.Context(), id) {
		WriteError(w, http.StatusBadGateway, "delete_failed",
			"The listing could not be deleted and has been restored", nil)
		return
	}

	h.invalidateListings(r)
	w.WriteHeader(http.StatusNoContent)
}

// AdminListProperties returns the full listing collection, all statuses
// included. Mounted behind the admin code check.
func (h *Handler) AdminListProperties(w http.ResponseWriter, r *http.Request) {
	views := viewsOf(h.store.Properties())
	WriteSuccess(w, views, &Meta{Total: len(views)})
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetPropertyStatus moves a listing through moderation. Mounted behind the
// admin code check. The flip is applied locally even when the remote write
// fails.
func (h *Handler) SetPropertyStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.PropertyByID(id); !ok {
		WriteNotFound(w, "Listing not found")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	status := model.PropertyStatus(req.Status)
	switch status {
	case model.PropertyPending, model.PropertyApproved, model.PropertyRejected:
	default:
		WriteValidationError(w, map[string]string{
			"status": "Status must be 'Pending', 'Approved' or 'Rejected'",
		})
		return
	}

	h.store.SetPropertyStatus(r.Context(), id, status)
	h.invalidateListings(r)

	updated, _ := h.store.PropertyByID(id)
	WriteSuccess(w, viewOf(updated), nil)
}

// canManage reports whether the request may edit or delete the listing.
func (h *Handler) canManage(r *http.Request, p model.Property) bool {
	if h.isAdmin(r) {
		return true
	}
	agent, _ := h.publisher(r)
	return agent != nil && p.AgentID != "" && agent.ID == p.AgentID
}

// invalidateListings drops cached listing responses after a mutation.
func (h *Handler) invalidateListings(r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		slog.Debug("listing cache clear failed", "error", err)
	}
}
