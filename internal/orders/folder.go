// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package orders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fotoproof/internal/models"
	"fotoproof/internal/storage"
)

// ErrFolderNotFound marks a waiting order whose on-disk folder is
// missing at move time, e.g. removed by hand or by a concurrent move.
var ErrFolderNotFound = errors.New("order folder not found")

// FolderName builds the human-readable basename of an order folder:
// the customer name, the item count, the order date, and the order id
// in brackets so the studio can match folders to records at a glance.
// Path separators in the name are flattened so the result is always a
// single level under the status root.
func FolderName(order *models.Order) string {
	name := strings.NewReplacer("/", "-", "\\", "-").Replace(order.CustomerName)
	return fmt.Sprintf("%s %dun %s [%s]",
		name,
		len(order.Items),
		order.CreatedAt.Format(time.DateOnly),
		order.ID,
	)
}

// Folders materializes order folders on disk and moves them between
// status roots.
type Folders struct {
	layout *storage.Layout
}

// NewFolders returns a Folders over the given storage layout.
func NewFolders(layout *storage.Layout) *Folders {
	return &Folders{layout: layout}
}

// Create materializes the order under the waiting root: one subfolder
// per category, each selected image copied in (never moved — the
// catalog keeps its originals). Returns the folder path relative to the
// orders root. Any mkdir or copy failure fails the whole
// materialization.
func (f *Folders) Create(order *models.Order) (string, error) {
	rel := filepath.Join(storage.OrdersWaiting, FolderName(order))
	dir, err := f.layout.OrderFolder(rel)
	if err != nil {
		return "", fmt.Errorf("order folder path: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create order folder: %w", err)
	}

	for _, item := range order.Items {
		src, err := f.layout.ImageFile(item.ImagePath)
		if err != nil {
			return "", fmt.Errorf("order item source path: %w", err)
		}
		dst := filepath.Join(dir, item.CategoryName, item.ImageFileName)
		if err := f.layout.CopyFile(src, dst); err != nil {
			return "", fmt.Errorf("copy order item %q: %w", item.ImagePath, err)
		}
	}
	return filepath.ToSlash(rel), nil
}

// MoveToPaid renames the order's folder from the waiting root to the
// paid root, keeping the basename. Returns the new relative path. When
// the waiting folder is gone, ErrFolderNotFound; a duplicate move loses
// the rename race and reports it the same way, leaving the winner's
// folder untouched.
func (f *Folders) MoveToPaid(order *models.Order) (string, error) {
	if order.FolderPath == nil {
		return "", fmt.Errorf("order %s has no folder: %w", order.ID, ErrFolderNotFound)
	}

	base := filepath.Base(filepath.FromSlash(*order.FolderPath))
	src, err := f.layout.OrderFolder(filepath.Join(storage.OrdersWaiting, base))
	if err != nil {
		return "", fmt.Errorf("waiting folder path: %w", err)
	}
	if !f.layout.DirExists(src) {
		return "", fmt.Errorf("order %s: %w", order.ID, ErrFolderNotFound)
	}

	rel := filepath.Join(storage.OrdersPaid, base)
	dst, err := f.layout.OrderFolder(rel)
	if err != nil {
		return "", fmt.Errorf("paid folder path: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("order %s: %w", order.ID, ErrFolderNotFound)
		}
		return "", fmt.Errorf("move order folder: %w", err)
	}
	return filepath.ToSlash(rel), nil
}
