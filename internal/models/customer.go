// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CodeLength is the fixed length of customer access codes.
const CodeLength = 4

// Customer is a gallery client identified by a unique numeric access
// code. Customers authenticate with the code alone; inactive customers
// fail authentication. Their order history lives in the orders table,
// keyed by code.
type Customer struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Email     *string    `json:"email,omitempty"`
	Phone     *string    `json:"phone,omitempty"`
	Active    bool       `json:"active"`
	Notes     *string    `json:"notes,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// OrderCount is populated by list queries for the admin overview.
	OrderCount int `json:"order_count"`
}

// ValidCode reports whether s is a well-formed access code: exactly
// four ASCII digits.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
