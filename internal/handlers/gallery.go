// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"fotoproof/internal/middleware"
	"fotoproof/internal/mirror"
	"fotoproof/internal/models"
	"fotoproof/internal/resolver"
)

// GalleryCategoryStore is the subset of the category store the gallery
// handlers read directly.
type GalleryCategoryStore interface {
	FindByPath(path string) (*models.Category, error)
	SetImageCount(id uuid.UUID, count int) error
}

// Gallery groups the browsing handlers: category listing, search, and
// the image grid. All responses are filtered and priced through the
// access resolver for the requesting principal.
type Gallery struct {
	resolver   *resolver.Resolver
	categories GalleryCategoryStore
	mirror     *mirror.Mirror
}

// NewGallery creates a new Gallery handler group.
func NewGallery(res *resolver.Resolver, categories GalleryCategoryStore, m *mirror.Mirror) *Gallery {
	return &Gallery{
		resolver:   res,
		categories: categories,
		mirror:     m,
	}
}

// Categories lists the accessible categories at one tree level. The
// optional "parent" query parameter scopes to a subtree; without it the
// root level is returned.
func (g *Gallery) Categories(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	var parentPath *string
	if parent := strings.Trim(r.URL.Query().Get("parent"), "/"); parent != "" {
		parentPath = &parent
	}

	categories, err := g.resolver.ListAccessible(principal, parentPath)
	if err != nil {
		writeDomainError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// AllCategories lists every accessible category across the whole tree,
// for clients that render their own hierarchy.
func (g *Gallery) AllCategories(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	categories, err := g.resolver.ListAccessibleRecursive(principal)
	if err != nil {
		writeDomainError(w, "list all categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// Search finds accessible categories by name substring.
func (g *Gallery) Search(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required.")
		return
	}
	if utf8.RuneCountInString(query) > maxSearchLen {
		writeError(w, http.StatusBadRequest, "Search query is too long (max 200 characters).")
		return
	}

	categories, err := g.resolver.Search(principal, query)
	if err != nil {
		writeDomainError(w, "search categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// Images lists the files of one category with their thumbnails, priced
// for the requesting principal. The category is addressed by the "path"
// query parameter. Browsing a category counts as a view and refreshes
// its stored image count.
func (g *Gallery) Images(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not signed in.")
		return
	}

	categoryPath := strings.Trim(r.URL.Query().Get("path"), "/")
	if categoryPath == "" {
		writeError(w, http.StatusBadRequest, "Category path is required.")
		return
	}

	category, err := g.categories.FindByPath(categoryPath)
	if err != nil {
		writeDomainError(w, "find category", err)
		return
	}
	if category == nil || !category.Active {
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	}

	access, err := g.resolver.ResolveAccess(principal, category)
	if err != nil {
		writeDomainError(w, "resolve access", err)
		return
	}
	if !access.Granted {
		writeError(w, http.StatusForbidden, "You do not have access to this category.")
		return
	}
	category.Price = access.EffectivePrice
	category.PriceOverridden = access.Overridden

	images, err := g.mirror.ListImages(category.Path)
	if err != nil {
		writeDomainError(w, "list images", err)
		return
	}

	// Image-count bookkeeping never fails the request. View counting
	// belongs to category listings, not image fetches.
	if category.ImageCount != len(images) {
		if err := g.categories.SetImageCount(category.ID, len(images)); err != nil {
			slog.Warn("image count update failed", "path", category.Path, "error", err)
		}
		category.ImageCount = len(images)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"images":   images,
	})
}
