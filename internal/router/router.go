// Package router sets up all HTTP routes and middleware chains for the
// gallery server. Routes are grouped into auth, customer gallery, order
// and back-office areas with appropriate guards.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fotoproof/internal/handlers"
	"fotoproof/internal/middleware"
	"fotoproof/internal/session"
)

// New creates and returns the configured chi router with all middleware
// and route groups wired up. loginLimiter throttles the two login
// endpoints; its Stop is the caller's responsibility.
func New(sessionStore *session.Store, loginLimiter *middleware.RateLimiter, auth *handlers.Auth, gallery *handlers.Gallery, admin *handlers.Admin, orders *handlers.Orders) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))
	r.Use(middleware.CSRF)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/auth", func(r chi.Router) {
		// Login endpoints are rate limited against code guessing.
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/customer/login", auth.CustomerLogin)
			r.Post("/admin/login", auth.AdminLogin)
		})

		// 2FA endpoints need a pending admin session, not a principal.
		r.Post("/admin/2fa/setup", auth.TwoFASetup)
		r.Post("/admin/2fa/verify", auth.TwoFAVerify)

		r.Get("/me", auth.Me)
		r.Post("/logout", auth.Logout)
	})

	// Gallery browsing — any signed-in principal.
	r.Route("/gallery", func(r chi.Router) {
		r.Use(middleware.RequirePrincipal)
		r.Get("/categories", gallery.Categories)
		r.Get("/categories/all", gallery.AllCategories)
		r.Get("/search", gallery.Search)
		r.Get("/images", gallery.Images)
	})

	r.Route("/orders", func(r chi.Router) {
		// Customer endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCustomer)
			r.Post("/", orders.Create)
			r.Get("/mine", orders.MyOrders)
		})

		// Detail is shared; the handler scopes customers to their own
		// orders.
		r.With(middleware.RequirePrincipal).Get("/{id}", orders.Get)

		// Fulfillment endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", orders.List)
			r.Patch("/{id}/status", orders.UpdateStatus)
			r.Patch("/{id}/notes", orders.SetInternalNotes)
		})
	})

	// Back office.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", admin.CustomersList)
			r.Post("/", admin.CustomerCreate)
			r.Get("/{code}", admin.CustomerGet)
			r.Patch("/{code}", admin.CustomerUpdate)
			r.Delete("/{code}", admin.CustomerDelete)

			r.Post("/{code}/grants", admin.GrantAccess)
			r.Post("/{code}/grants/batch", admin.BatchGrantAccess)
			r.Delete("/{code}/grants/{categoryID}", admin.RevokeAccess)
		})

		r.Patch("/categories/{id}/price", admin.UpdatePrice)
		r.Patch("/categories/prices", admin.BatchUpdatePrices)

		r.Post("/sync", admin.Sync)
		r.Get("/storage", admin.StorageStats)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
