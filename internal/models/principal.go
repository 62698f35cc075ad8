// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// PrincipalKind distinguishes admin users from gallery customers.
type PrincipalKind string

const (
	PrincipalAdmin    PrincipalKind = "admin"
	PrincipalCustomer PrincipalKind = "customer"
)

// Principal is the verified identity behind a request, passed explicitly
// into resolver and order operations instead of being read from ambient
// request state. Admins bypass access filtering entirely; customers are
// scoped to their grants.
type Principal struct {
	Kind PrincipalKind

	// CustomerCode is set when Kind is PrincipalCustomer.
	CustomerCode string

	// UserID is set when Kind is PrincipalAdmin.
	UserID uuid.UUID

	Name string
}

// IsAdmin reports whether the principal is an admin user.
func (p Principal) IsAdmin() bool { return p.Kind == PrincipalAdmin }

// IsCustomer reports whether the principal is a gallery customer.
func (p Principal) IsCustomer() bool { return p.Kind == PrincipalCustomer }
