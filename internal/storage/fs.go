// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage manages the on-disk layout of the gallery: canonical
// category images, generated thumbnails, and per-order folders. It also
// provides an optional S3-compatible archive client for paid orders.
//
// Layout under the storage root:
//
//	categories/**                      canonical images, one dir per category
//	thumbnails/{small,medium,large}/** mirrors category subpaths
//	orders/{waiting,paid}/**           one folder per order
package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Well-known subdirectories of the storage root.
const (
	CategoriesDir = "categories"
	ThumbnailsDir = "thumbnails"
	OrdersDir     = "orders"

	OrdersWaiting = "waiting"
	OrdersPaid    = "paid"
)

// Layout resolves paths under a single storage root and guarantees the
// expected directory skeleton exists.
type Layout struct {
	root string
}

// NewLayout creates a Layout rooted at root and ensures the category,
// thumbnail, and order directories exist.
func NewLayout(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}

	l := &Layout{root: abs}

	dirs := []string{
		abs,
		l.CategoriesRoot(),
		filepath.Join(abs, ThumbnailsDir, "small"),
		filepath.Join(abs, ThumbnailsDir, "medium"),
		filepath.Join(abs, ThumbnailsDir, "large"),
		l.OrderStatusRoot(OrdersWaiting),
		l.OrderStatusRoot(OrdersPaid),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("storage mkdir %s: %w", d, err)
		}
	}

	return l, nil
}

// Root returns the absolute storage root.
func (l *Layout) Root() string { return l.root }

// CategoriesRoot returns the canonical images root.
func (l *Layout) CategoriesRoot() string {
	return filepath.Join(l.root, CategoriesDir)
}

// CategoryDir resolves a slash-delimited category path to its directory.
func (l *Layout) CategoryDir(categoryPath string) (string, error) {
	return l.safeJoin(l.CategoriesRoot(), categoryPath)
}

// ImageFile resolves a category-relative image path to its file on disk.
func (l *Layout) ImageFile(imagePath string) (string, error) {
	return l.safeJoin(l.CategoriesRoot(), imagePath)
}

// ThumbFile resolves the expected thumbnail location for an image at the
// given size ("small", "medium", "large"). The thumbnail mirrors the
// category subpath and always carries a .webp extension.
func (l *Layout) ThumbFile(size, imagePath string) (string, error) {
	ext := filepath.Ext(imagePath)
	webp := strings.TrimSuffix(imagePath, ext) + ".webp"
	return l.safeJoin(filepath.Join(l.root, ThumbnailsDir, size), webp)
}

// OrdersRoot returns the root of all order folders.
func (l *Layout) OrdersRoot() string {
	return filepath.Join(l.root, OrdersDir)
}

// OrderStatusRoot returns the folder holding orders in the given
// physical state ("waiting" or "paid").
func (l *Layout) OrderStatusRoot(status string) string {
	return filepath.Join(l.root, OrdersDir, status)
}

// OrderFolder resolves an order's stored folder path (relative to the
// orders root, e.g. "waiting/Jane 2un 2026-8-30 [id]") to its absolute
// directory.
func (l *Layout) OrderFolder(relPath string) (string, error) {
	return l.safeJoin(l.OrdersRoot(), relPath)
}

// DirExists reports whether p exists and is a directory.
func (l *Layout) DirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// CopyFile copies src to dst, creating dst's parent directory. The copy
// is not atomic; callers treat any failure as failing the whole batch.
func (l *Layout) CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("copy mkdir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	return out.Close()
}

// safeJoin joins rel under base and rejects paths that escape it.
func (l *Layout) safeJoin(base, rel string) (string, error) {
	joined := filepath.Join(base, filepath.FromSlash(rel))
	if joined != base && !strings.HasPrefix(joined, base+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", rel)
	}
	return joined, nil
}

// DirStats aggregates size and entry counts for one storage subtree.
type DirStats struct {
	SizeBytes   int64 `json:"size_bytes"`
	Files       int   `json:"files"`
	Directories int   `json:"directories"`
}

func (d *DirStats) add(o DirStats) {
	d.SizeBytes += o.SizeBytes
	d.Files += o.Files
	d.Directories += o.Directories
}

// Stats holds per-subtree storage statistics plus the combined total.
type Stats struct {
	Categories DirStats `json:"categories"`
	Thumbnails DirStats `json:"thumbnails"`
	Orders     DirStats `json:"orders"`
	Total      DirStats `json:"total"`
}

// Stats walks the three storage subtrees and aggregates file counts and
// sizes. The walk can be expensive on large galleries; callers cache the
// result.
func (l *Layout) Stats(ctx context.Context) (*Stats, error) {
	var s Stats

	subtrees := []struct {
		dir  string
		dest *DirStats
	}{
		{l.CategoriesRoot(), &s.Categories},
		{filepath.Join(l.root, ThumbnailsDir), &s.Thumbnails},
		{l.OrdersRoot(), &s.Orders},
	}

	for _, sub := range subtrees {
		stats, err := dirStats(ctx, sub.dir)
		if err != nil {
			return nil, err
		}
		*sub.dest = stats
		s.Total.add(stats)
	}

	return &s, nil
}

// dirStats recursively aggregates one directory tree. The root directory
// itself is not counted.
func dirStats(ctx context.Context, dir string) (DirStats, error) {
	var stats DirStats

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			stats.Directories++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Files++
		stats.SizeBytes += info.Size()
		return nil
	})
	if err != nil {
		return DirStats{}, fmt.Errorf("storage stats %s: %w", dir, err)
	}
	return stats, nil
}
