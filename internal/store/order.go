// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"fotoproof/internal/models"
)

// OrderStore persists orders and their line-item snapshots.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore returns a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, customer_code, customer_name, status, total_price,
	notes, shipping_address, payment_method, folder_path,
	paid_at, canceled_at, internal_notes, processed_by,
	created_at, updated_at`

// scanOrder scans a row into an Order struct, without items.
func scanOrder(scanner interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	err := scanner.Scan(
		&o.ID, &o.CustomerCode, &o.CustomerName, &o.Status, &o.TotalPrice,
		&o.Notes, &o.ShippingAddress, &o.PaymentMethod, &o.FolderPath,
		&o.PaidAt, &o.CanceledAt, &o.InternalNotes, &o.ProcessedBy,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persists an order and its items in a single transaction. The
// total is computed from the item price snapshots here, once, and never
// recomputed afterwards. Item positions preserve the selection order.
func (s *OrderStore) Create(order *models.Order) (*models.Order, error) {
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("create order: %w: order has no items", models.ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback()

	total := order.ItemTotal()

	row := tx.QueryRow(`
		INSERT INTO orders (customer_code, customer_name, total_price,
			notes, shipping_address, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+orderColumns,
		order.CustomerCode, order.CustomerName, total,
		order.Notes, order.ShippingAddress, order.PaymentMethod,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		var itemID uuid.UUID
		err := tx.QueryRow(`
			INSERT INTO order_items (order_id, category_id, category_name,
				image_path, image_file_name, price, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			created.ID, item.CategoryID, item.CategoryName,
			item.ImagePath, item.ImageFileName, item.Price, i,
		).Scan(&itemID)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		item.ID = itemID
		item.OrderID = created.ID
		created.Items = append(created.Items, item)
	}
	created.ItemCount = len(created.Items)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create order: %w", err)
	}
	return created, nil
}

// FindByID retrieves an order with its items. Returns nil if not found.
func (s *OrderStore) FindByID(id uuid.UUID) (*models.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	items, err := s.itemsFor(id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	o.ItemCount = len(items)
	return o, nil
}

func (s *OrderStore) itemsFor(orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := s.db.Query(`
		SELECT id, order_id, category_id, category_name,
		       image_path, image_file_name, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		err := rows.Scan(
			&it.ID, &it.OrderID, &it.CategoryID, &it.CategoryName,
			&it.ImagePath, &it.ImageFileName, &it.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListFilter narrows List and Count. Zero values mean "no filter".
type ListFilter struct {
	Status       models.OrderStatus
	CustomerCode string
	Skip         int
	Limit        int
}

// List returns orders newest first, without item rows but with item
// counts. The filter's Limit defaults to 50.
func (s *OrderStore) List(f ListFilter) ([]models.Order, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where, args := f.whereClause()
	args = append(args, limit, f.Skip)
	n := len(args)

	rows, err := s.db.Query(`
		SELECT o.id, o.customer_code, o.customer_name, o.status, o.total_price,
		       o.notes, o.shipping_address, o.payment_method, o.folder_path,
		       o.paid_at, o.canceled_at, o.internal_notes, o.processed_by,
		       o.created_at, o.updated_at,
		       COUNT(i.id) AS item_count
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		`+where+`
		GROUP BY o.id
		ORDER BY o.created_at DESC
		LIMIT $`+fmt.Sprint(n-1)+` OFFSET $`+fmt.Sprint(n),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var items []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.CustomerCode, &o.CustomerName, &o.Status, &o.TotalPrice,
			&o.Notes, &o.ShippingAddress, &o.PaymentMethod, &o.FolderPath,
			&o.PaidAt, &o.CanceledAt, &o.InternalNotes, &o.ProcessedBy,
			&o.CreatedAt, &o.UpdatedAt, &o.ItemCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// Count returns the number of orders matching the filter, ignoring
// pagination.
func (s *OrderStore) Count(f ListFilter) (int, error) {
	where, args := f.whereClause()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM orders o `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (f ListFilter) whereClause() (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if f.CustomerCode != "" {
		args = append(args, f.CustomerCode)
		conds = append(conds, fmt.Sprintf("o.customer_code = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	where := "WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

// UpdateStatus moves an order to a new status, stamping paid_at or
// canceled_at and recording the admin who processed it. Returns nil if
// the order does not exist.
func (s *OrderStore) UpdateStatus(id uuid.UUID, status models.OrderStatus, processedBy *uuid.UUID) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("update order status: %w: unknown status %q", models.ErrValidation, status)
	}

	row := s.db.QueryRow(`
		UPDATE orders SET
			status = $1,
			paid_at = CASE WHEN $1 = 'paid' THEN NOW() ELSE paid_at END,
			canceled_at = CASE WHEN $1 = 'canceled' THEN NOW() ELSE canceled_at END,
			processed_by = COALESCE($2, processed_by),
			updated_at = NOW()
		WHERE id = $3
		RETURNING `+orderColumns,
		status, processedBy, id,
	)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return o, nil
}

// SetFolderPath records where the order folder lives on disk, relative
// to the orders root.
func (s *OrderStore) SetFolderPath(id uuid.UUID, folderPath string) error {
	_, err := s.db.Exec(`
		UPDATE orders SET folder_path = $1, updated_at = NOW() WHERE id = $2`,
		folderPath, id,
	)
	if err != nil {
		return fmt.Errorf("set order folder path: %w", err)
	}
	return nil
}

// SetInternalNotes replaces the admin-only notes on an order. Returns
// nil if the order does not exist.
func (s *OrderStore) SetInternalNotes(id uuid.UUID, notes *string) (*models.Order, error) {
	row := s.db.QueryRow(`
		UPDATE orders SET internal_notes = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+orderColumns,
		notes, id,
	)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set internal notes: %w", err)
	}
	return o, nil
}
