// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the logical lifecycle state of an order.
type OrderStatus string

const (
	StatusWaiting  OrderStatus = "waiting"
	StatusPaid     OrderStatus = "paid"
	StatusCanceled OrderStatus = "canceled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusPaid, StatusCanceled:
		return true
	}
	return false
}

// Order is a customer's selection of images. Prices and names are
// snapshotted at creation time and never recomputed, even if category
// pricing changes later. FolderPath tracks the on-disk order folder
// relative to the orders root; it follows the status folder the order
// currently lives in.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	CustomerCode string          `json:"customer_code"`
	CustomerName string          `json:"customer_name"`
	Status       OrderStatus     `json:"status"`
	Items        []OrderItem     `json:"items,omitempty"`
	TotalPrice   decimal.Decimal `json:"total_price"`

	Notes           *string `json:"notes,omitempty"`
	ShippingAddress *string `json:"shipping_address,omitempty"`
	PaymentMethod   *string `json:"payment_method,omitempty"`

	FolderPath *string `json:"folder_path,omitempty"`

	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CanceledAt *time.Time `json:"canceled_at,omitempty"`

	InternalNotes *string    `json:"internal_notes,omitempty"`
	ProcessedBy   *uuid.UUID `json:"processed_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ItemCount is populated by list queries, which omit the item rows
	// themselves for performance.
	ItemCount int `json:"item_count"`
}

// OrderItem is one selected image with its price snapshot.
type OrderItem struct {
	ID            uuid.UUID       `json:"id"`
	OrderID       uuid.UUID       `json:"order_id"`
	CategoryID    uuid.UUID       `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	ImagePath     string          `json:"image_path"`
	ImageFileName string          `json:"image_file_name"`
	Price         decimal.Decimal `json:"price"`
}

// ItemTotal sums the line-item price snapshots. At creation time this
// equals TotalPrice; afterwards TotalPrice stays authoritative.
func (o *Order) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price)
	}
	return total
}
