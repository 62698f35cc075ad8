// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package resolver decides what a principal may see and at what price.
// Admins see the raw catalog; customers see only the categories they
// hold grants for, with per-customer price overrides applied. All
// decisions are made against explicit Principal values, never ambient
// request state.
package resolver

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fotoproof/internal/models"
)

// CategoryStore is the catalog surface the resolver reads.
type CategoryStore interface {
	FindByPath(path string) (*models.Category, error)
	ListByParent(parentPath *string) ([]models.Category, error)
	ListByIDs(ids []uuid.UUID) ([]models.Category, error)
	ListAll() ([]models.Category, error)
	SearchByName(q string) ([]models.Category, error)
	IncrementViews(ids []uuid.UUID) error
}

// AccessStore is the grant surface the resolver reads.
type AccessStore interface {
	Find(customerID, categoryID uuid.UUID) (*models.AccessGrant, error)
	ListByCustomer(customerID uuid.UUID) ([]models.AccessGrant, error)
}

// CustomerStore maps access codes to customer rows.
type CustomerStore interface {
	FindActiveByCode(code string) (*models.Customer, error)
}

// Resolver applies access grants and price overrides to catalog reads.
type Resolver struct {
	categories CategoryStore
	access     AccessStore
	customers  CustomerStore
}

// New creates a Resolver over the given stores.
func New(categories CategoryStore, access AccessStore, customers CustomerStore) *Resolver {
	return &Resolver{categories: categories, access: access, customers: customers}
}

// Access is the outcome of an access check for one (customer, category)
// pair.
type Access struct {
	Granted bool

	// EffectivePrice is the price this customer pays in this category:
	// the grant's override when set, the category default otherwise.
	// Zero and meaningless when not granted.
	EffectivePrice decimal.Decimal

	// Overridden reports whether EffectivePrice came from a custom
	// price rather than the category default.
	Overridden bool
}

// ResolveAccess checks whether the principal may order from the given
// category and resolves the price they pay. Admins are always granted at
// the category default.
func (r *Resolver) ResolveAccess(principal models.Principal, category *models.Category) (Access, error) {
	if category == nil {
		return Access{}, nil
	}
	if principal.IsAdmin() {
		return Access{Granted: true, EffectivePrice: category.Price}, nil
	}

	customer, err := r.customers.FindActiveByCode(principal.CustomerCode)
	if err != nil {
		return Access{}, fmt.Errorf("resolve access: %w", err)
	}
	if customer == nil {
		return Access{}, nil
	}

	grant, err := r.access.Find(customer.ID, category.ID)
	if err != nil {
		return Access{}, fmt.Errorf("resolve access: %w", err)
	}
	if grant == nil {
		return Access{}, nil
	}
	return Access{
		Granted:        true,
		EffectivePrice: grant.EffectivePrice(category.Price),
		Overridden:     grant.HasOverride(),
	}, nil
}

// ListAccessible returns the categories directly under parentPath that
// the principal may see, sorted by name. Admins get the store listing
// unfiltered. Customers get only their granted categories, with Price
// rewritten to the effective per-customer price; a customer with no
// grants sees an empty gallery. Customer listings bump the view counter
// on the returned categories, best-effort.
func (r *Resolver) ListAccessible(principal models.Principal, parentPath *string) ([]models.Category, error) {
	if principal.IsAdmin() {
		return r.categories.ListByParent(parentPath)
	}

	granted, err := r.grantedCategories(principal)
	if err != nil {
		return nil, err
	}

	var visible []models.Category
	for _, c := range granted {
		if !sameParent(c.ParentPath, parentPath) {
			continue
		}
		visible = append(visible, c)
	}
	r.bumpViews(visible)
	return visible, nil
}

// ListAccessibleRecursive returns every category the principal may see,
// regardless of depth. Used for the flattened "all categories" gallery
// view.
func (r *Resolver) ListAccessibleRecursive(principal models.Principal) ([]models.Category, error) {
	if principal.IsAdmin() {
		return r.categories.ListAll()
	}

	granted, err := r.grantedCategories(principal)
	if err != nil {
		return nil, err
	}
	r.bumpViews(granted)
	return granted, nil
}

// Search returns categories whose name matches the query substring,
// case-insensitive, capped at the store's search limit. Customers only
// see matches inside their grants, priced per their overrides.
func (r *Resolver) Search(principal models.Principal, query string) ([]models.Category, error) {
	matches, err := r.categories.SearchByName(query)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	if principal.IsAdmin() {
		return matches, nil
	}

	granted, err := r.grantedCategories(principal)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Category, len(granted))
	for _, c := range granted {
		byID[c.ID] = c
	}

	var visible []models.Category
	for _, m := range matches {
		if priced, ok := byID[m.ID]; ok {
			visible = append(visible, priced)
		}
	}
	return visible, nil
}

// grantedCategories loads the customer's granted categories, active
// only, with effective prices applied and sorted by name. An unknown or
// deactivated code resolves to no categories rather than an error:
// access checks degrade closed.
func (r *Resolver) grantedCategories(principal models.Principal) ([]models.Category, error) {
	customer, err := r.customers.FindActiveByCode(principal.CustomerCode)
	if err != nil {
		return nil, fmt.Errorf("list accessible: %w", err)
	}
	if customer == nil {
		return nil, nil
	}

	grants, err := r.access.ListByCustomer(customer.ID)
	if err != nil {
		return nil, fmt.Errorf("list accessible: %w", err)
	}
	if len(grants) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(grants))
	overrides := make(map[uuid.UUID]*decimal.Decimal, len(grants))
	for _, g := range grants {
		ids = append(ids, g.CategoryID)
		overrides[g.CategoryID] = g.CustomPrice
	}

	categories, err := r.categories.ListByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("list accessible: %w", err)
	}

	var visible []models.Category
	for _, c := range categories {
		if !c.Active {
			continue
		}
		if override := overrides[c.ID]; override != nil {
			c.Price = *override
			c.PriceOverridden = true
		}
		visible = append(visible, c)
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].Name < visible[j].Name })
	return visible, nil
}

// bumpViews increments the view counters for a customer listing.
// Failures are logged and swallowed; a broken counter must not break
// browsing.
func (r *Resolver) bumpViews(categories []models.Category) {
	if len(categories) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	if err := r.categories.IncrementViews(ids); err != nil {
		slog.Warn("failed to bump category views", "error", err)
	}
}

// sameParent compares two optional parent paths, treating nil and the
// empty string as the same root level.
func sameParent(a, b *string) bool {
	av, bv := "", ""
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}
