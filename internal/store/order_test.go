// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fotoproof/internal/models"
)

// testOrder builds an unsaved two-item order for the given customer.
func testOrder(code string) *models.Order {
	catID := uuid.New()
	return &models.Order{
		CustomerCode: code,
		CustomerName: "Order Test",
		Items: []models.OrderItem{
			{
				CategoryID:    catID,
				CategoryName:  "weddings",
				ImagePath:     "weddings/IMG_0001.jpg",
				ImageFileName: "IMG_0001.jpg",
				Price:         decimal.NewFromFloat(12.50),
			},
			{
				CategoryID:    catID,
				CategoryName:  "weddings",
				ImagePath:     "weddings/IMG_0002.jpg",
				ImageFileName: "IMG_0002.jpg",
				Price:         decimal.NewFromFloat(20),
			},
		},
	}
}

func TestOrderStoreCreate(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)
	customers := NewCustomerStore(db)

	cust, err := customers.Create("Order Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	t.Cleanup(func() {
		cleanOrders(t, db, cust.Code)
		cleanCustomers(t, db, cust.Code)
	})

	created, err := orders.Create(testOrder(cust.Code))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("expected non-nil order UUID")
	}
	if created.Status != models.StatusWaiting {
		t.Errorf("status: got %q, want %q", created.Status, models.StatusWaiting)
	}
	// Total is the sum of the item snapshots: 12.50 + 20.00.
	want := decimal.NewFromFloat(32.50)
	if !created.TotalPrice.Equal(want) {
		t.Errorf("total: got %s, want %s", created.TotalPrice, want)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}
	for _, it := range created.Items {
		if it.ID == uuid.Nil {
			t.Error("expected non-nil item UUID")
		}
		if it.OrderID != created.ID {
			t.Errorf("item order_id: got %s, want %s", it.OrderID, created.ID)
		}
	}
}

func TestOrderStoreCreateRejectsEmpty(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)

	_, err := orders.Create(&models.Order{CustomerCode: "0000", CustomerName: "Empty"})
	if err == nil {
		t.Fatal("expected error for order with no items")
	}
}

func TestOrderStoreFindByIDPreservesItemOrder(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)
	customers := NewCustomerStore(db)

	cust, err := customers.Create("Order Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	t.Cleanup(func() {
		cleanOrders(t, db, cust.Code)
		cleanCustomers(t, db, cust.Code)
	})

	created, err := orders.Create(testOrder(cust.Code))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := orders.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected order, got nil")
	}
	if len(found.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(found.Items))
	}
	// Items come back in selection order.
	if found.Items[0].ImageFileName != "IMG_0001.jpg" {
		t.Errorf("first item: got %q", found.Items[0].ImageFileName)
	}
	if found.Items[1].ImageFileName != "IMG_0002.jpg" {
		t.Errorf("second item: got %q", found.Items[1].ImageFileName)
	}

	// Not found.
	missing, err := orders.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("FindByID (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for random UUID")
	}
}

func TestOrderStoreListFilters(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)
	customers := NewCustomerStore(db)

	cust, err := customers.Create("Order Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	t.Cleanup(func() {
		cleanOrders(t, db, cust.Code)
		cleanCustomers(t, db, cust.Code)
	})

	first, _ := orders.Create(testOrder(cust.Code))
	orders.Create(testOrder(cust.Code))
	orders.UpdateStatus(first.ID, models.StatusPaid, nil)

	// By customer: both orders, no item rows but counts populated.
	list, err := orders.List(ListFilter{CustomerCode: cust.Code})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	for _, o := range list {
		if o.ItemCount != 2 {
			t.Errorf("item count: got %d, want 2", o.ItemCount)
		}
		if len(o.Items) != 0 {
			t.Error("List should not load item rows")
		}
	}

	// By status.
	paid, err := orders.List(ListFilter{CustomerCode: cust.Code, Status: models.StatusPaid})
	if err != nil {
		t.Fatalf("List (paid): %v", err)
	}
	if len(paid) != 1 {
		t.Fatalf("expected 1 paid order, got %d", len(paid))
	}
	if paid[0].ID != first.ID {
		t.Errorf("paid order: got %s, want %s", paid[0].ID, first.ID)
	}

	// Count ignores pagination.
	n, err := orders.Count(ListFilter{CustomerCode: cust.Code})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}

	// Pagination.
	page, err := orders.List(ListFilter{CustomerCode: cust.Code, Skip: 1, Limit: 1})
	if err != nil {
		t.Fatalf("List (page): %v", err)
	}
	if len(page) != 1 {
		t.Errorf("expected 1 order on page, got %d", len(page))
	}
}

func TestOrderStoreUpdateStatus(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)
	customers := NewCustomerStore(db)
	users := NewUserStore(db)

	cust, err := customers.Create("Order Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	admin, err := users.Create("test-order-admin@store-test.local", "pass", "Order Admin")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	t.Cleanup(func() {
		cleanOrders(t, db, cust.Code)
		cleanCustomers(t, db, cust.Code)
		cleanUsers(t, db, admin.Email)
	})

	created, _ := orders.Create(testOrder(cust.Code))
	if created.PaidAt != nil {
		t.Error("expected nil paid_at on a waiting order")
	}

	o, err := orders.UpdateStatus(created.ID, models.StatusPaid, &admin.ID)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if o.Status != models.StatusPaid {
		t.Errorf("status: got %q, want paid", o.Status)
	}
	if o.PaidAt == nil {
		t.Error("expected paid_at to be stamped")
	}
	if o.ProcessedBy == nil || *o.ProcessedBy != admin.ID {
		t.Errorf("processed_by: got %v, want %s", o.ProcessedBy, admin.ID)
	}

	// Totals are snapshots; the status change must not touch them.
	if !o.TotalPrice.Equal(created.TotalPrice) {
		t.Errorf("total changed: got %s, want %s", o.TotalPrice, created.TotalPrice)
	}

	// Unknown order.
	missing, err := orders.UpdateStatus(uuid.New(), models.StatusPaid, nil)
	if err != nil {
		t.Fatalf("UpdateStatus (missing): %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown order")
	}

	// Bad status is rejected before touching the DB.
	_, err = orders.UpdateStatus(created.ID, "shipped", nil)
	if err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestOrderStoreSetFolderPath(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)
	customers := NewCustomerStore(db)

	cust, err := customers.Create("Order Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	t.Cleanup(func() {
		cleanOrders(t, db, cust.Code)
		cleanCustomers(t, db, cust.Code)
	})

	created, _ := orders.Create(testOrder(cust.Code))
	if created.FolderPath != nil {
		t.Error("expected nil folder_path on fresh order")
	}

	folder := "waiting/Order Test 2un 2026-08-30 [" + created.ID.String() + "]"
	if err := orders.SetFolderPath(created.ID, folder); err != nil {
		t.Fatalf("SetFolderPath: %v", err)
	}

	o, _ := orders.FindByID(created.ID)
	if o.FolderPath == nil || *o.FolderPath != folder {
		t.Errorf("folder_path: got %v, want %q", o.FolderPath, folder)
	}
}

func TestOrderStoreSetInternalNotes(t *testing.T) {
	db := testDB(t)
	orders := NewOrderStore(db)
	customers := NewCustomerStore(db)

	cust, err := customers.Create("Order Test", nil, nil, nil)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	t.Cleanup(func() {
		cleanOrders(t, db, cust.Code)
		cleanCustomers(t, db, cust.Code)
	})

	created, _ := orders.Create(testOrder(cust.Code))

	notes := "customer asked for matte prints"
	o, err := orders.SetInternalNotes(created.ID, &notes)
	if err != nil {
		t.Fatalf("SetInternalNotes: %v", err)
	}
	if o.InternalNotes == nil || *o.InternalNotes != notes {
		t.Errorf("internal notes: got %v, want %q", o.InternalNotes, notes)
	}
}
