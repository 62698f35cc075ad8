// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCategoryStoreUpsertSynced(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	path := "store-test-weddings/store-test-smith"
	parent := "store-test-weddings"
	t.Cleanup(func() { cleanCategories(t, db, path, parent) })

	inserted, err := s.UpsertSynced("store-test-weddings", parent, nil)
	if err != nil {
		t.Fatalf("UpsertSynced (root): %v", err)
	}
	if !inserted {
		t.Error("expected first upsert to report an insert")
	}

	inserted, err = s.UpsertSynced("store-test-smith", path, &parent)
	if err != nil {
		t.Fatalf("UpsertSynced (child): %v", err)
	}
	if !inserted {
		t.Error("expected first child upsert to report an insert")
	}

	// Second pass over the same folder is an update, not an insert.
	inserted, err = s.UpsertSynced("store-test-smith", path, &parent)
	if err != nil {
		t.Fatalf("UpsertSynced (repeat): %v", err)
	}
	if inserted {
		t.Error("expected repeat upsert to report an update")
	}

	c, err := s.FindByPath(path)
	if err != nil {
		t.Fatalf("FindByPath: %v", err)
	}
	if c == nil {
		t.Fatal("expected category, got nil")
	}
	if c.Name != "store-test-smith" {
		t.Errorf("name: got %q", c.Name)
	}
	if c.ParentPath == nil || *c.ParentPath != parent {
		t.Errorf("parent_path: got %v, want %q", c.ParentPath, parent)
	}
	if !c.Active {
		t.Error("expected synced category to be active")
	}
	if !c.Price.IsZero() {
		t.Errorf("expected zero default price, got %s", c.Price)
	}
}

func TestCategoryStoreUpsertKeepsPricing(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	path := "store-test-priced"
	t.Cleanup(func() { cleanCategories(t, db, path) })

	if _, err := s.UpsertSynced(path, path, nil); err != nil {
		t.Fatalf("UpsertSynced: %v", err)
	}
	c, _ := s.FindByPath(path)

	price := decimal.NewFromFloat(12.50)
	unit := "buc"
	if _, err := s.UpdatePrice(c.ID, PriceUpdate{Price: &price, PriceUnit: &unit}); err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}

	// A later sync pass must not clobber admin-set pricing.
	if _, err := s.UpsertSynced(path, path, nil); err != nil {
		t.Fatalf("UpsertSynced (repeat): %v", err)
	}

	c, _ = s.FindByPath(path)
	if !c.Price.Equal(price) {
		t.Errorf("price after re-sync: got %s, want %s", c.Price, price)
	}
	if c.PriceUnit != unit {
		t.Errorf("price unit after re-sync: got %q, want %q", c.PriceUnit, unit)
	}
}

func TestCategoryStoreDeactivateStale(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	live := "store-test-stale-live"
	gone := "store-test-stale-gone"
	t.Cleanup(func() { cleanCategories(t, db, live, gone) })

	s.UpsertSynced(live, live, nil)
	s.UpsertSynced(gone, gone, nil)

	n, err := s.DeactivateStale([]string{live})
	if err != nil {
		t.Fatalf("DeactivateStale: %v", err)
	}
	if n < 1 {
		t.Errorf("expected at least 1 deactivated, got %d", n)
	}

	c, _ := s.FindByPath(gone)
	if c == nil {
		t.Fatal("stale category must be kept, not deleted")
	}
	if c.Active {
		t.Error("expected stale category to be inactive")
	}

	c, _ = s.FindByPath(live)
	if !c.Active {
		t.Error("expected live category to stay active")
	}
}

func TestCategoryStoreListByParent(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	parent := "store-test-tree"
	childA := "store-test-tree/alpha"
	childB := "store-test-tree/beta"
	t.Cleanup(func() { cleanCategories(t, db, parent, childA, childB) })

	s.UpsertSynced(parent, parent, nil)
	s.UpsertSynced("beta", childB, &parent)
	s.UpsertSynced("alpha", childA, &parent)

	children, err := s.ListByParent(&parent)
	if err != nil {
		t.Fatalf("ListByParent: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	// Ordered by name.
	if children[0].Name != "alpha" || children[1].Name != "beta" {
		t.Errorf("unexpected order: %q, %q", children[0].Name, children[1].Name)
	}
}

func TestCategoryStoreSearchByName(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	path := "store-test-search-popescu"
	t.Cleanup(func() { cleanCategories(t, db, path) })

	s.UpsertSynced("store-test-search-popescu", path, nil)

	// Case-insensitive substring match.
	results, err := s.SearchByName("SEARCH-POPESCU")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != path {
		t.Errorf("path: got %q, want %q", results[0].Path, path)
	}

	results, err = s.SearchByName("no-such-category-anywhere")
	if err != nil {
		t.Fatalf("SearchByName (miss): %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestCategoryStoreUpdatePrice(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	path := "store-test-pricing"
	t.Cleanup(func() { cleanCategories(t, db, path) })

	s.UpsertSynced(path, path, nil)
	c, _ := s.FindByPath(path)

	price := decimal.NewFromFloat(20)
	updated, err := s.UpdatePrice(c.ID, PriceUpdate{Price: &price})
	if err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated category, got nil")
	}
	if !updated.Price.Equal(price) {
		t.Errorf("price: got %s, want %s", updated.Price, price)
	}

	// Partial update keeps the price.
	unit := "foto"
	updated, err = s.UpdatePrice(c.ID, PriceUpdate{PriceUnit: &unit})
	if err != nil {
		t.Fatalf("UpdatePrice (unit only): %v", err)
	}
	if !updated.Price.Equal(price) {
		t.Errorf("price clobbered by partial update: got %s", updated.Price)
	}
	if updated.PriceUnit != unit {
		t.Errorf("price unit: got %q, want %q", updated.PriceUnit, unit)
	}

	// Unknown category.
	missing, err := s.UpdatePrice(uuid.New(), PriceUpdate{Price: &price})
	if err != nil {
		t.Fatalf("UpdatePrice (unknown): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown category")
	}
}

func TestCategoryStoreIncrementViews(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	path := "store-test-views"
	t.Cleanup(func() { cleanCategories(t, db, path) })

	s.UpsertSynced(path, path, nil)
	c, _ := s.FindByPath(path)

	if err := s.IncrementViews([]uuid.UUID{c.ID}); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	if err := s.IncrementViews([]uuid.UUID{c.ID}); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	// Empty batch is a no-op.
	if err := s.IncrementViews(nil); err != nil {
		t.Fatalf("IncrementViews (empty): %v", err)
	}

	c, _ = s.FindByPath(path)
	if c.Views != 2 {
		t.Errorf("views: got %d, want 2", c.Views)
	}
}
