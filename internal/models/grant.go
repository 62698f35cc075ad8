// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccessGrant authorizes one customer to view and order from one
// category. At most one grant exists per (customer, category) pair;
// granting again updates the existing row in place. Grants are
// cascade-deleted with their customer.
type AccessGrant struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	CategoryID uuid.UUID `json:"category_id"`

	// CustomPrice overrides the category's default price for this
	// customer. nil means "use the category default".
	CustomPrice *decimal.Decimal `json:"custom_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined category fields, populated by admin listing queries.
	CategoryName string          `json:"category_name,omitempty"`
	CategoryPath string          `json:"category_path,omitempty"`
	DefaultPrice decimal.Decimal `json:"default_price,omitempty"`
}

// HasOverride reports whether this grant carries a custom price.
func (g *AccessGrant) HasOverride() bool {
	return g.CustomPrice != nil
}

// EffectivePrice returns the price this grant resolves to given the
// category's default: the override when set, the default otherwise.
func (g *AccessGrant) EffectivePrice(categoryDefault decimal.Decimal) decimal.Decimal {
	if g.CustomPrice != nil {
		return *g.CustomPrice
	}
	return categoryDefault
}
