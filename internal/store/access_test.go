// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAccessStoreGrantAndFind(t *testing.T) {
	db := testDB(t)
	access := NewAccessStore(db)
	customers := NewCustomerStore(db)
	categories := NewCategoryStore(db)

	cust, err := customers.Create("Grant Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	path := "store-test-grant"
	t.Cleanup(func() {
		cleanCustomers(t, db, cust.Code)
		cleanCategories(t, db, path)
	})
	categories.UpsertSynced(path, path, nil)
	cat, _ := categories.FindByPath(path)

	g, err := access.Grant(cust.ID, cat.ID, nil)
	if err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if g.CustomPrice != nil {
		t.Error("expected no override on plain grant")
	}

	found, err := access.Find(cust.ID, cat.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found == nil {
		t.Fatal("expected grant, got nil")
	}
	if found.ID != g.ID {
		t.Errorf("ID mismatch: got %s, want %s", found.ID, g.ID)
	}

	// No grant for a random category.
	missing, err := access.Find(cust.ID, uuid.New())
	if err != nil {
		t.Fatalf("Find (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for ungranted category")
	}
}

func TestAccessStoreGrantUpsertsOverride(t *testing.T) {
	db := testDB(t)
	access := NewAccessStore(db)
	customers := NewCustomerStore(db)
	categories := NewCategoryStore(db)

	cust, err := customers.Create("Override Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	path := "store-test-override"
	t.Cleanup(func() {
		cleanCustomers(t, db, cust.Code)
		cleanCategories(t, db, path)
	})
	categories.UpsertSynced(path, path, nil)
	cat, _ := categories.FindByPath(path)

	price := decimal.NewFromFloat(12.50)
	g, err := access.Grant(cust.ID, cat.ID, &price)
	if err != nil {
		t.Fatalf("Grant with override: %v", err)
	}
	if g.CustomPrice == nil || !g.CustomPrice.Equal(price) {
		t.Errorf("custom price: got %v, want %s", g.CustomPrice, price)
	}

	// Re-granting with nil clears the override in place, no second row.
	g, err = access.Grant(cust.ID, cat.ID, nil)
	if err != nil {
		t.Fatalf("re-Grant: %v", err)
	}
	if g.CustomPrice != nil {
		t.Errorf("expected override cleared, got %v", g.CustomPrice)
	}

	grants, err := access.ListByCustomer(cust.ID)
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(grants) != 1 {
		t.Errorf("expected exactly 1 grant after re-grant, got %d", len(grants))
	}
}

func TestAccessStoreListByCustomerJoinsCategory(t *testing.T) {
	db := testDB(t)
	access := NewAccessStore(db)
	customers := NewCustomerStore(db)
	categories := NewCategoryStore(db)

	cust, err := customers.Create("Join Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	path := "store-test-join"
	t.Cleanup(func() {
		cleanCustomers(t, db, cust.Code)
		cleanCategories(t, db, path)
	})
	categories.UpsertSynced("store-test-join", path, nil)
	cat, _ := categories.FindByPath(path)

	defaultPrice := decimal.NewFromFloat(20)
	categories.UpdatePrice(cat.ID, PriceUpdate{Price: &defaultPrice})

	if _, err := access.Grant(cust.ID, cat.ID, nil); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	grants, err := access.ListByCustomer(cust.ID)
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	g := grants[0]
	if g.CategoryPath != path {
		t.Errorf("category path: got %q, want %q", g.CategoryPath, path)
	}
	if g.CategoryName != "store-test-join" {
		t.Errorf("category name: got %q", g.CategoryName)
	}
	if !g.DefaultPrice.Equal(defaultPrice) {
		t.Errorf("default price: got %s, want %s", g.DefaultPrice, defaultPrice)
	}
}

func TestAccessStoreRevoke(t *testing.T) {
	db := testDB(t)
	access := NewAccessStore(db)
	customers := NewCustomerStore(db)
	categories := NewCategoryStore(db)

	cust, err := customers.Create("Revoke Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	path := "store-test-revoke"
	t.Cleanup(func() {
		cleanCustomers(t, db, cust.Code)
		cleanCategories(t, db, path)
	})
	categories.UpsertSynced(path, path, nil)
	cat, _ := categories.FindByPath(path)

	access.Grant(cust.ID, cat.ID, nil)

	ok, err := access.Revoke(cust.ID, cat.ID)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if !ok {
		t.Error("expected Revoke to report a removed grant")
	}

	ok, err = access.Revoke(cust.ID, cat.ID)
	if err != nil {
		t.Fatalf("Revoke (again): %v", err)
	}
	if ok {
		t.Error("expected second Revoke to report nothing removed")
	}
}

func TestAccessStoreBatchGrant(t *testing.T) {
	db := testDB(t)
	access := NewAccessStore(db)
	customers := NewCustomerStore(db)
	categories := NewCategoryStore(db)

	cust, err := customers.Create("Batch Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	paths := []string{"store-test-batch-a", "store-test-batch-b", "store-test-batch-c"}
	t.Cleanup(func() {
		cleanCustomers(t, db, cust.Code)
		cleanCategories(t, db, paths...)
	})

	var ids []uuid.UUID
	for _, p := range paths {
		categories.UpsertSynced(p, p, nil)
		cat, _ := categories.FindByPath(p)
		ids = append(ids, cat.ID)
	}

	n, err := access.BatchGrant(cust.ID, ids, nil)
	if err != nil {
		t.Fatalf("BatchGrant: %v", err)
	}
	if n != 3 {
		t.Errorf("granted: got %d, want 3", n)
	}

	grants, _ := access.ListByCustomer(cust.ID)
	if len(grants) != 3 {
		t.Errorf("expected 3 grants, got %d", len(grants))
	}

	// Empty batch is a no-op.
	n, err = access.BatchGrant(cust.ID, nil, nil)
	if err != nil {
		t.Fatalf("BatchGrant (empty): %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 grants for empty batch, got %d", n)
	}
}

func TestAccessStoreCascadeOnCustomerDelete(t *testing.T) {
	db := testDB(t)
	access := NewAccessStore(db)
	customers := NewCustomerStore(db)
	categories := NewCategoryStore(db)

	cust, err := customers.Create("Cascade Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	path := "store-test-cascade"
	t.Cleanup(func() { cleanCategories(t, db, path) })
	categories.UpsertSynced(path, path, nil)
	cat, _ := categories.FindByPath(path)

	access.Grant(cust.ID, cat.ID, nil)

	if _, err := customers.Delete(cust.Code); err != nil {
		t.Fatalf("delete customer: %v", err)
	}

	grants, err := access.ListByCustomer(cust.ID)
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(grants) != 0 {
		t.Errorf("expected grants to cascade with customer, got %d", len(grants))
	}
}
