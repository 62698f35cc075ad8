// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fotoproof/internal/cache"
	"fotoproof/internal/mirror"
	"fotoproof/internal/models"
	"fotoproof/internal/storage"
	"fotoproof/internal/store"
)

// Admin groups the back-office handlers: customer management, access
// grants, pricing, catalog sync and storage statistics. All routes are
// mounted behind the admin guard.
type Admin struct {
	customers  *store.CustomerStore
	access     *store.AccessStore
	categories *store.CategoryStore
	mirror     *mirror.Mirror
	layout     *storage.Layout
	values     *cache.ValueCache
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(customers *store.CustomerStore, access *store.AccessStore, categories *store.CategoryStore, m *mirror.Mirror, layout *storage.Layout, values *cache.ValueCache) *Admin {
	return &Admin{
		customers:  customers,
		access:     access,
		categories: categories,
		mirror:     m,
		layout:     layout,
		values:     values,
	}
}

// --- Customers ---

// CustomersList returns all customers with their order counts.
func (a *Admin) CustomersList(w http.ResponseWriter, r *http.Request) {
	customers, err := a.customers.List()
	if err != nil {
		writeDomainError(w, "list customers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// CustomerCreate registers a new customer and generates their access
// code.
func (a *Admin) CustomerCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
		Notes *string `json:"notes"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	if msg := validateCustomer(req.Name, req.Email, req.Phone); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateNotes(req.Notes); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	customer, err := a.customers.Create(strings.TrimSpace(req.Name), req.Email, req.Phone, req.Notes)
	if err != nil {
		writeDomainError(w, "create customer", err)
		return
	}

	slog.Info("customer created", "code", customer.Code, "name", customer.Name)
	writeJSON(w, http.StatusCreated, customer)
}

// customerByCode resolves the {code} URL parameter. Writes the error
// response and returns nil when the code is malformed or unknown.
func (a *Admin) customerByCode(w http.ResponseWriter, r *http.Request) *models.Customer {
	code := chi.URLParam(r, "code")
	if !models.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "Access code must be 4 digits.")
		return nil
	}

	customer, err := a.customers.FindByCode(code)
	if err != nil {
		writeDomainError(w, "find customer", err)
		return nil
	}
	if customer == nil {
		writeError(w, http.StatusNotFound, "Customer not found.")
		return nil
	}
	return customer
}

// CustomerGet returns one customer with their access grants.
func (a *Admin) CustomerGet(w http.ResponseWriter, r *http.Request) {
	customer := a.customerByCode(w, r)
	if customer == nil {
		return
	}

	grants, err := a.access.ListByCustomer(customer.ID)
	if err != nil {
		writeDomainError(w, "list grants", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"customer": customer,
		"grants":   grants,
	})
}

// CustomerUpdate applies a partial edit to a customer. Deactivation
// here is what locks a customer out of login.
func (a *Admin) CustomerUpdate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !models.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "Access code must be 4 digits.")
		return
	}

	var upd store.CustomerUpdate
	if !readJSON(w, r, &upd) {
		return
	}

	if upd.Name != nil {
		if msg := validateCustomer(*upd.Name, upd.Email, upd.Phone); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if msg := validateNotes(upd.Notes); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	customer, err := a.customers.Update(code, upd)
	if err != nil {
		writeDomainError(w, "update customer", err)
		return
	}
	if customer == nil {
		writeError(w, http.StatusNotFound, "Customer not found.")
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// CustomerDelete removes a customer and, via cascade, their grants.
// Their orders survive under the now-orphaned code.
func (a *Admin) CustomerDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !models.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "Access code must be 4 digits.")
		return
	}

	deleted, err := a.customers.Delete(code)
	if err != nil {
		writeDomainError(w, "delete customer", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Customer not found.")
		return
	}

	slog.Info("customer deleted", "code", code)
	w.WriteHeader(http.StatusNoContent)
}

// --- Access grants ---

// GrantAccess grants a customer access to one category, optionally with
// a customer-specific price. Re-granting updates the override in place.
func (a *Admin) GrantAccess(w http.ResponseWriter, r *http.Request) {
	customer := a.customerByCode(w, r)
	if customer == nil {
		return
	}

	var req struct {
		CategoryID  uuid.UUID        `json:"category_id"`
		CustomPrice *decimal.Decimal `json:"custom_price"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validatePrice(req.CustomPrice); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	category, err := a.categories.FindByID(req.CategoryID)
	if err != nil {
		writeDomainError(w, "find category", err)
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	}

	grant, err := a.access.Grant(customer.ID, category.ID, req.CustomPrice)
	if err != nil {
		writeDomainError(w, "grant access", err)
		return
	}

	slog.Info("access granted", "customer", customer.Code, "category", category.Path)
	writeJSON(w, http.StatusCreated, grant)
}

// BatchGrantAccess grants a customer access to several categories at
// once, all with the same optional override.
func (a *Admin) BatchGrantAccess(w http.ResponseWriter, r *http.Request) {
	customer := a.customerByCode(w, r)
	if customer == nil {
		return
	}

	var req struct {
		CategoryIDs []uuid.UUID      `json:"category_ids"`
		CustomPrice *decimal.Decimal `json:"custom_price"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if len(req.CategoryIDs) == 0 {
		writeError(w, http.StatusBadRequest, "At least one category is required.")
		return
	}
	if msg := validatePrice(req.CustomPrice); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	granted, err := a.access.BatchGrant(customer.ID, req.CategoryIDs, req.CustomPrice)
	if err != nil {
		writeDomainError(w, "batch grant access", err)
		return
	}

	slog.Info("access batch granted", "customer", customer.Code, "count", granted)
	writeJSON(w, http.StatusOK, map[string]any{"granted": granted})
}

// RevokeAccess removes a customer's access to one category.
func (a *Admin) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	customer := a.customerByCode(w, r)
	if customer == nil {
		return
	}

	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID.")
		return
	}

	revoked, err := a.access.Revoke(customer.ID, categoryID)
	if err != nil {
		writeDomainError(w, "revoke access", err)
		return
	}
	if !revoked {
		writeError(w, http.StatusNotFound, "Grant not found.")
		return
	}

	slog.Info("access revoked", "customer", customer.Code, "category_id", categoryID)
	w.WriteHeader(http.StatusNoContent)
}

// --- Pricing ---

// UpdatePrice edits a category's default price, unit, or quantity
// discounts. Existing order totals are unaffected.
func (a *Admin) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category ID.")
		return
	}

	var upd store.PriceUpdate
	if !readJSON(w, r, &upd) {
		return
	}
	if msg := validatePrice(upd.Price); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	for _, d := range upd.QuantityDiscounts {
		if d.Quantity <= 0 || d.DiscountPercentage.IsNegative() {
			writeError(w, http.StatusBadRequest, "Quantity discounts need a positive quantity and a non-negative percentage.")
			return
		}
	}

	category, err := a.categories.UpdatePrice(categoryID, upd)
	if err != nil {
		writeDomainError(w, "update price", err)
		return
	}
	if category == nil {
		writeError(w, http.StatusNotFound, "Category not found.")
		return
	}

	slog.Info("price updated", "category", category.Path, "price", category.Price)
	writeJSON(w, http.StatusOK, category)
}

// BatchUpdatePrices applies one price edit to several categories at
// once. Categories that do not exist are skipped and counted out of
// the response.
func (a *Admin) BatchUpdatePrices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryIDs []uuid.UUID      `json:"category_ids"`
		Price       *decimal.Decimal `json:"price"`
		PriceUnit   *string          `json:"price_unit"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if len(req.CategoryIDs) == 0 {
		writeError(w, http.StatusBadRequest, "No categories given.")
		return
	}
	if msg := validatePrice(req.Price); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	upd := store.PriceUpdate{Price: req.Price, PriceUnit: req.PriceUnit}
	updated := 0
	for _, id := range req.CategoryIDs {
		category, err := a.categories.UpdatePrice(id, upd)
		if err != nil {
			writeDomainError(w, "batch update prices", err)
			return
		}
		if category != nil {
			updated++
		}
	}

	slog.Info("prices batch updated", "requested", len(req.CategoryIDs), "updated", updated)
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// --- Catalog sync & storage ---

// Sync walks the categories storage tree and reconciles the database
// catalog with it. The cached storage statistics are invalidated since
// the walk may reflect new content.
func (a *Admin) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := a.mirror.Sync()
	if err != nil {
		writeDomainError(w, "catalog sync", err)
		return
	}

	a.values.Invalidate(r.Context(), cache.StorageStatsKey)

	slog.Info("catalog synced",
		"total", result.Total, "new", result.New,
		"updated", result.Updated, "deactivated", result.Deactivated)
	writeJSON(w, http.StatusOK, result)
}

// StorageStats reports disk usage of the categories, thumbnails and
// orders subtrees. The walk is expensive, so results are served from
// the value cache when fresh.
func (a *Admin) StorageStats(w http.ResponseWriter, r *http.Request) {
	var stats storage.Stats
	if a.values.Get(r.Context(), cache.StorageStatsKey, &stats) {
		writeJSON(w, http.StatusOK, &stats)
		return
	}

	fresh, err := a.layout.Stats(r.Context())
	if err != nil {
		writeDomainError(w, "storage stats", err)
		return
	}

	a.values.Set(r.Context(), cache.StorageStatsKey, fresh)
	writeJSON(w, http.StatusOK, fresh)
}
