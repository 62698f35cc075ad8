// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgconn"

	"fotoproof/internal/models"
)

// codeAttempts bounds the retry loop for access code generation. With
// 9000 possible codes the loop only matters near exhaustion.
const codeAttempts = 25

// CustomerStore manages gallery customers and their access codes.
type CustomerStore struct {
	db *sql.DB
}

// NewCustomerStore returns a new CustomerStore.
func NewCustomerStore(db *sql.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

const customerColumns = `id, code, name, email, phone, active, notes, last_login, created_at, updated_at`

// scanCustomer scans a row into a Customer struct.
func scanCustomer(scanner interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	err := scanner.Scan(
		&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone,
		&c.Active, &c.Notes, &c.LastLogin,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new customer with a freshly generated unique 4-digit
// code. Codes are drawn at random and checked against the table, but the
// unique constraint on the final INSERT is the actual arbiter: a late
// collision from a concurrent create triggers another attempt rather
// than failing.
func (s *CustomerStore) Create(name string, email, phone, notes *string) (*models.Customer, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		// Cheap pre-check; saves an INSERT round trip on common collisions.
		existing, err := s.FindByCode(code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		row := s.db.QueryRow(`
			INSERT INTO customers (code, name, email, phone, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+customerColumns,
			code, name, email, phone, notes,
		)
		c, err := scanCustomer(row)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create customer: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("create customer: no free access code after %d attempts", codeAttempts)
}

// randomCode draws a 4-digit code in [1000, 9999].
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FindByCode retrieves a customer by access code. Returns nil if not found.
func (s *CustomerStore) FindByCode(code string) (*models.Customer, error) {
	row := s.db.QueryRow(`SELECT `+customerColumns+` FROM customers WHERE code = $1`, code)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customer by code: %w", err)
	}
	return c, nil
}

// FindActiveByCode retrieves a customer only if the code exists and is
// active. Inactive codes fail authentication. Returns nil if not found.
func (s *CustomerStore) FindActiveByCode(code string) (*models.Customer, error) {
	row := s.db.QueryRow(`
		SELECT `+customerColumns+` FROM customers
		WHERE code = $1 AND active`, code)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active customer: %w", err)
	}
	return c, nil
}

// List returns all customers newest first, each with its order count.
func (s *CustomerStore) List() ([]models.Customer, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.code, c.name, c.email, c.phone, c.active, c.notes,
		       c.last_login, c.created_at, c.updated_at,
		       COUNT(o.id) AS order_count
		FROM customers c
		LEFT JOIN orders o ON o.customer_code = c.code
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var items []models.Customer
	for rows.Next() {
		var c models.Customer
		err := rows.Scan(
			&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone,
			&c.Active, &c.Notes, &c.LastLogin,
			&c.CreatedAt, &c.UpdatedAt, &c.OrderCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// CustomerUpdate carries an admin edit. Nil fields keep current values.
type CustomerUpdate struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Notes  *string `json:"notes"`
	Active *bool   `json:"active"`
}

// Update applies a partial edit to the customer with the given code and
// returns the updated row. Returns nil if the code is unknown.
func (s *CustomerStore) Update(code string, upd CustomerUpdate) (*models.Customer, error) {
	row := s.db.QueryRow(`
		UPDATE customers SET
			name = COALESCE($1, name),
			email = COALESCE($2, email),
			phone = COALESCE($3, phone),
			notes = COALESCE($4, notes),
			active = COALESCE($5, active),
			updated_at = NOW()
		WHERE code = $6
		RETURNING `+customerColumns,
		upd.Name, upd.Email, upd.Phone, upd.Notes, upd.Active, code,
	)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return c, nil
}

// Delete removes a customer by code. Access grants cascade with the row.
// Reports whether a row was deleted.
func (s *CustomerStore) Delete(code string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM customers WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("delete customer: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// TouchLastLogin stamps the customer's last login time. Best-effort.
func (s *CustomerStore) TouchLastLogin(code string) error {
	_, err := s.db.Exec(`UPDATE customers SET last_login = NOW() WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
