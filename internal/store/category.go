// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fotoproof/internal/models"
)

// SearchLimit caps category name search results.
const SearchLimit = 20

// CategoryStore manages the catalog tree in the database. Rows are
// created and refreshed by the filesystem sync; price metadata is edited
// by admins.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, path, parent_path, price, price_unit, quantity_discounts, active, views, image_count, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	var discounts []byte
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Path, &c.ParentPath,
		&c.Price, &c.PriceUnit, &discounts,
		&c.Active, &c.Views, &c.ImageCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(discounts) > 0 {
		if err := json.Unmarshal(discounts, &c.QuantityDiscounts); err != nil {
			return nil, fmt.Errorf("decode quantity discounts: %w", err)
		}
	}
	return &c, nil
}

// FindByPath retrieves a category by its path. Returns nil if not found.
func (s *CategoryStore) FindByPath(path string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE path = $1`, path)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by path: %w", err)
	}
	return c, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// ListByParent returns the categories directly under parentPath, sorted
// by name. A nil parentPath selects root-level categories.
func (s *CategoryStore) ListByParent(parentPath *string) ([]models.Category, error) {
	var rows *sql.Rows
	var err error
	if parentPath == nil || *parentPath == "" {
		rows, err = s.db.Query(`
			SELECT ` + categoryColumns + ` FROM categories
			WHERE parent_path IS NULL ORDER BY name`)
	} else {
		rows, err = s.db.Query(`
			SELECT `+categoryColumns+` FROM categories
			WHERE parent_path = $1 ORDER BY name`, *parentPath)
	}
	if err != nil {
		return nil, fmt.Errorf("list categories by parent: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

// ListAll returns every category sorted by path, so parents precede
// their children.
func (s *CategoryStore) ListAll() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

// ListByIDs returns the categories whose IDs are in ids, sorted by name.
func (s *CategoryStore) ListByIDs(ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(ids, 0)
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+` FROM categories
		WHERE id IN (`+placeholders+`) ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories by ids: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

// SearchByName returns categories whose name contains q
// (case-insensitive), sorted by name and capped at SearchLimit.
func (s *CategoryStore) SearchByName(q string) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+` FROM categories
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2`, q, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

// UpsertSynced creates the category at path if it is unknown, or updates
// its name and parent path in place. New rows start with price 0 and
// active=true. Reports whether a row was created. Concurrent syncs of
// the same path resolve last-writer-wins through the ON CONFLICT clause.
func (s *CategoryStore) UpsertSynced(name, path string, parentPath *string) (bool, error) {
	// xmax = 0 only holds for freshly inserted rows.
	var inserted bool
	err := s.db.QueryRow(`
		INSERT INTO categories (name, path, parent_path)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE
		SET name = EXCLUDED.name, parent_path = EXCLUDED.parent_path, updated_at = NOW()
		RETURNING (xmax = 0)`, name, path, parentPath).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert category %q: %w", path, err)
	}
	return inserted, nil
}

// DeactivateStale marks every active category whose path is absent from
// livePaths as inactive. Rows are never deleted; the sync history stays
// queryable. Returns the number of rows changed.
func (s *CategoryStore) DeactivateStale(livePaths []string) (int64, error) {
	var res sql.Result
	var err error
	if len(livePaths) == 0 {
		res, err = s.db.Exec(`UPDATE categories SET active = FALSE, updated_at = NOW() WHERE active`)
	} else {
		placeholders, args := inClause(livePaths, 0)
		res, err = s.db.Exec(`
			UPDATE categories SET active = FALSE, updated_at = NOW()
			WHERE active AND path NOT IN (`+placeholders+`)`, args...)
	}
	if err != nil {
		return 0, fmt.Errorf("deactivate stale categories: %w", err)
	}
	return res.RowsAffected()
}

// PriceUpdate carries an admin price edit. Nil fields keep the current
// value.
type PriceUpdate struct {
	Price             *decimal.Decimal          `json:"price"`
	PriceUnit         *string                   `json:"price_unit"`
	QuantityDiscounts []models.QuantityDiscount `json:"quantity_discounts"`
}

// UpdatePrice applies a price edit to one category and returns the
// updated row. Returns nil if the category does not exist.
func (s *CategoryStore) UpdatePrice(id uuid.UUID, upd PriceUpdate) (*models.Category, error) {
	var discounts any
	if upd.QuantityDiscounts != nil {
		data, err := json.Marshal(upd.QuantityDiscounts)
		if err != nil {
			return nil, fmt.Errorf("encode quantity discounts: %w", err)
		}
		discounts = data
	}

	row := s.db.QueryRow(`
		UPDATE categories SET
			price = COALESCE($1, price),
			price_unit = COALESCE($2, price_unit),
			quantity_discounts = COALESCE($3, quantity_discounts),
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+categoryColumns,
		upd.Price, upd.PriceUnit, discounts, id,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update category price: %w", err)
	}
	return c, nil
}

// IncrementViews bumps the view counter on every listed category.
// Best-effort: callers log failures and move on.
func (s *CategoryStore) IncrementViews(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders, args := inClause(ids, 0)
	_, err := s.db.Exec(`
		UPDATE categories SET views = views + 1
		WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// SetImageCount stores the image count observed by the last listing.
func (s *CategoryStore) SetImageCount(id uuid.UUID, count int) error {
	_, err := s.db.Exec(`
		UPDATE categories SET image_count = $1, updated_at = NOW()
		WHERE id = $2`, count, id)
	if err != nil {
		return fmt.Errorf("set image count: %w", err)
	}
	return nil
}

// collectCategories drains rows into a slice.
func collectCategories(rows *sql.Rows) ([]models.Category, error) {
	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// inClause builds a "$1, $2, ..." placeholder list starting after
// offset, with the matching args slice.
func inClause[T any](vals []T, offset int) (string, []any) {
	var b strings.Builder
	args := make([]any, len(vals))
	for i, v := range vals {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", offset+i+1)
		args[i] = v
	}
	return b.String(), args
}
