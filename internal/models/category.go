// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is a node in the product catalog tree, backed 1:1 by a
// directory under the categories storage root. Its identity is the
// slash-delimited Path mirroring the directory hierarchy. Categories are
// discovered by the filesystem sync; price metadata is edited by admins.
type Category struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	Path              string             `json:"path"`
	ParentPath        *string            `json:"parent_path"` // nil = root level
	Price             decimal.Decimal    `json:"price"`
	PriceUnit         string             `json:"price_unit"`
	QuantityDiscounts []QuantityDiscount `json:"quantity_discounts"`
	Active            bool               `json:"active"`
	Views             int                `json:"views"`
	ImageCount        int                `json:"image_count"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`

	// PriceOverridden is set by the resolver when Price carries a
	// customer-specific override instead of the category default.
	PriceOverridden bool `json:"price_overridden,omitempty"`
}

// QuantityDiscount grants a percentage discount once an order reaches
// the given item quantity in this category.
type QuantityDiscount struct {
	Quantity           int             `json:"quantity"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// FullPath returns the slash-joined path including the parent prefix.
// For synced categories this always equals Path.
func (c *Category) FullPath() string {
	if c.ParentPath != nil && *c.ParentPath != "" {
		return *c.ParentPath + "/" + c.Name
	}
	return c.Name
}

// IsRoot reports whether the category sits directly under the categories
// root.
func (c *Category) IsRoot() bool {
	return c.ParentPath == nil || *c.ParentPath == ""
}
