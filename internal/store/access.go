// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fotoproof/internal/models"
)

// AccessStore manages per-customer category grants and price overrides.
type AccessStore struct {
	db *sql.DB
}

// NewAccessStore returns a new AccessStore.
func NewAccessStore(db *sql.DB) *AccessStore {
	return &AccessStore{db: db}
}

const grantColumns = `id, customer_id, category_id, custom_price, created_at, updated_at`

// scanGrant scans a row into an AccessGrant struct.
func scanGrant(scanner interface{ Scan(...any) error }) (*models.AccessGrant, error) {
	var g models.AccessGrant
	err := scanner.Scan(
		&g.ID, &g.CustomerID, &g.CategoryID, &g.CustomPrice,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Grant authorizes a customer for a category, optionally with a custom
// price. Granting an already-granted pair updates the override in place,
// so a repeat grant with a nil price clears a previous override.
func (s *AccessStore) Grant(customerID, categoryID uuid.UUID, customPrice *decimal.Decimal) (*models.AccessGrant, error) {
	row := s.db.QueryRow(`
		INSERT INTO access_grants (customer_id, category_id, custom_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, category_id) DO UPDATE SET
			custom_price = EXCLUDED.custom_price,
			updated_at = NOW()
		RETURNING `+grantColumns,
		customerID, categoryID, customPrice,
	)
	g, err := scanGrant(row)
	if err != nil {
		return nil, fmt.Errorf("grant access: %w", err)
	}
	return g, nil
}

// Revoke removes a customer's grant for a category. Reports whether a
// grant existed. Revoking never touches past orders.
func (s *AccessStore) Revoke(customerID, categoryID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		DELETE FROM access_grants
		WHERE customer_id = $1 AND category_id = $2`,
		customerID, categoryID,
	)
	if err != nil {
		return false, fmt.Errorf("revoke access: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Find retrieves the grant for a (customer, category) pair. Returns nil
// if the customer has no access to that category.
func (s *AccessStore) Find(customerID, categoryID uuid.UUID) (*models.AccessGrant, error) {
	row := s.db.QueryRow(`
		SELECT `+grantColumns+` FROM access_grants
		WHERE customer_id = $1 AND category_id = $2`,
		customerID, categoryID,
	)
	g, err := scanGrant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find grant: %w", err)
	}
	return g, nil
}

// ListByCustomer returns all grants for a customer with the category
// name, path and default price joined in, ordered by category path.
func (s *AccessStore) ListByCustomer(customerID uuid.UUID) ([]models.AccessGrant, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.customer_id, g.category_id, g.custom_price,
		       g.created_at, g.updated_at,
		       c.name, c.path, c.price
		FROM access_grants g
		JOIN categories c ON c.id = g.category_id
		WHERE g.customer_id = $1
		ORDER BY c.path
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var items []models.AccessGrant
	for rows.Next() {
		var g models.AccessGrant
		err := rows.Scan(
			&g.ID, &g.CustomerID, &g.CategoryID, &g.CustomPrice,
			&g.CreatedAt, &g.UpdatedAt,
			&g.CategoryName, &g.CategoryPath, &g.DefaultPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

// GrantedCategoryIDs returns the set of category IDs the customer holds
// grants for.
func (s *AccessStore) GrantedCategoryIDs(customerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(`
		SELECT category_id FROM access_grants WHERE customer_id = $1`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list granted categories: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BatchGrant authorizes a customer for several categories in one
// transaction, all with the same optional custom price. Either every
// grant lands or none do.
func (s *AccessStore) BatchGrant(customerID uuid.UUID, categoryIDs []uuid.UUID, customPrice *decimal.Decimal) (int, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin batch grant: %w", err)
	}
	defer tx.Rollback()

	granted := 0
	for _, categoryID := range categoryIDs {
		_, err := tx.Exec(`
			INSERT INTO access_grants (customer_id, category_id, custom_price)
			VALUES ($1, $2, $3)
			ON CONFLICT (customer_id, category_id) DO UPDATE SET
				custom_price = EXCLUDED.custom_price,
				updated_at = NOW()`,
			customerID, categoryID, customPrice,
		)
		if err != nil {
			return 0, fmt.Errorf("batch grant category %s: %w", categoryID, err)
		}
		granted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch grant: %w", err)
	}
	return granted, nil
}
