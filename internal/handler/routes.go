// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nesthub/nesthub-go/internal/middleware"
)

// Routes mounts the API onto the router. Session middleware and the global
// rate limiter are expected to be installed by the caller.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			r.With(h.recordVisit).Get("/", h.ListProperties)
			r.With(h.recordVisit).Get("/{id}", h.GetProperty)
			r.Post("/", h.CreateProperty)
			r.Put("/{id}", h.UpdateProperty)
			r.Delete("/{id}", h.DeleteProperty)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.With(h.login.Middleware()).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.With(middleware.RequireAgent(h.sessions, h.store)).Get("/me", h.Me)
		})

		r.With(middleware.RequireAgent(h.sessions, h.store)).
			Put("/users/me", h.UpdateProfile)

		r.Post("/requests", h.CreateRequest)
		r.Post("/media", h.UploadPhoto)
		r.Post("/ai/describe", h.Describe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdminCode(h.store))

			r.Get("/properties", h.AdminListProperties)
			r.Put("/properties/{id}/status", h.SetPropertyStatus)

			r.Get("/users", h.AdminListUsers)
			r.Put("/users/{id}/status", h.SetUserStatus)

			r.Get("/requests", h.AdminListRequests)
			r.Delete("/requests/{id}", h.DeleteRequest)

			r.Get("/codes", h.GetCodes)
			r.Put("/codes", h.UpdateCodes)
		})
	})
}

// recordVisit logs public browsing traffic asynchronously.
func (h *Handler) recordVisit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.visits != nil {
			h.visits.Record(r)
		}
		next.ServeHTTP(w, r)
	})
}
