// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "errors"

// Domain error categories. Services wrap these with context via
// fmt.Errorf("...: %w", Err*) and handlers map them to HTTP statuses.
var (
	// ErrNotFound marks a customer, category, order, or grant that does
	// not exist. Maps to 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks a role mismatch or a customer requesting a
	// category they have no grant for. Maps to 403, distinct from
	// ErrNotFound so clients can prompt differently.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation marks rejected input: missing required fields,
	// invalid status values, empty item lists. Checked before any
	// mutation. Maps to 400.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks consistency failures such as a folder-move
	// source that is missing or a duplicate grant. Maps to 409 where it
	// is not downgraded to a logged warning.
	ErrConflict = errors.New("conflict")
)
