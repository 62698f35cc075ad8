// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mirror treats the categories directory tree as the source of
// truth for which categories and images exist, and reconciles it into
// the catalog store. The sync is additive: folders removed from disk do
// not delete their database rows (optionally they are deactivated).
package mirror

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"fotoproof/internal/imaging"
	"fotoproof/internal/storage"
)

// imageExtensions is the allow-list of image file extensions served by
// the gallery, matched case-insensitively.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
}

// CategoryEntry is one directory discovered under the categories root.
type CategoryEntry struct {
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	ParentPath *string `json:"parent_path"`
}

// Image is one gallery file with its thumbnail paths, keyed by size
// name. A missing key means thumbnail generation failed for that size;
// the image itself is still listed.
type Image struct {
	Name       string            `json:"name"`
	Path       string            `json:"path"`
	Thumbnails map[string]string `json:"thumbnails"`
}

// SyncResult reports what a catalog sync did.
type SyncResult struct {
	Total       int `json:"total"`
	New         int `json:"new"`
	Updated     int `json:"updated"`
	Deactivated int `json:"deactivated"`
}

// CatalogStore is the subset of the category store the sync writes to.
type CatalogStore interface {
	// UpsertSynced creates the category if its path is unknown, or
	// updates name and parent path in place. Reports whether a new row
	// was created.
	UpsertSynced(name, categoryPath string, parentPath *string) (created bool, err error)

	// DeactivateStale marks categories absent from livePaths inactive
	// and returns how many rows changed.
	DeactivateStale(livePaths []string) (int64, error)
}

// Mirror synchronizes the on-disk category tree with the catalog store
// and lists categories and images directly from disk.
type Mirror struct {
	layout  *storage.Layout
	resizer imaging.Resizer
	catalog CatalogStore

	// pruneStale deactivates DB categories whose folders vanished.
	// Off by default; the mirror is additive-only.
	pruneStale bool
}

// New creates a Mirror over the given storage layout.
func New(layout *storage.Layout, resizer imaging.Resizer, catalog CatalogStore, pruneStale bool) *Mirror {
	return &Mirror{
		layout:     layout,
		resizer:    resizer,
		catalog:    catalog,
		pruneStale: pruneStale,
	}
}

// ListCategories returns the immediate subdirectories of parentPath
// under the categories root. A missing directory yields an empty list,
// not an error. No sibling order is guaranteed beyond what the directory
// listing yields.
func (m *Mirror) ListCategories(parentPath string) ([]CategoryEntry, error) {
	dir, err := m.layout.CategoryDir(parentPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list categories %q: %w", parentPath, err)
	}

	var cats []CategoryEntry
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		full := e.Name()
		if parentPath != "" {
			full = parentPath + "/" + e.Name()
		}
		var parent *string
		if parentPath != "" {
			p := parentPath
			parent = &p
		}
		cats = append(cats, CategoryEntry{
			Name:       e.Name(),
			Path:       full,
			ParentPath: parent,
		})
	}
	return cats, nil
}

// ListImages returns the image files directly under a category
// directory, ensuring the three thumbnail sizes exist for each. A
// missing directory yields an empty list. Thumbnail failures degrade to
// "no thumbnail for that size" and never abort the listing.
func (m *Mirror) ListImages(categoryPath string) ([]Image, error) {
	dir, err := m.layout.CategoryDir(categoryPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list images %q: %w", categoryPath, err)
	}

	var images []Image
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(e.Name()))
		if !imageExtensions[ext] {
			continue
		}

		imagePath := e.Name()
		if categoryPath != "" {
			imagePath = categoryPath + "/" + e.Name()
		}

		images = append(images, Image{
			Name:       e.Name(),
			Path:       imagePath,
			Thumbnails: m.ensureThumbnails(imagePath),
		})
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

// ensureThumbnails guarantees each thumbnail size exists for imagePath,
// reusing files already on disk. Returns the relative thumbnail paths
// keyed by size name; failed sizes are omitted.
func (m *Mirror) ensureThumbnails(imagePath string) map[string]string {
	thumbs := make(map[string]string, len(imaging.Sizes))
	for _, size := range imaging.Sizes {
		rel, err := m.ensureThumbnail(imagePath, size)
		if err != nil {
			slog.Warn("thumbnail generation failed",
				"image", imagePath,
				"size", size.Name,
				"error", err,
			)
			continue
		}
		thumbs[size.Name] = rel
	}
	return thumbs
}

// ensureThumbnail creates one thumbnail if it is not already on disk.
// Generation is idempotent: an existing file is reused, never rebuilt.
func (m *Mirror) ensureThumbnail(imagePath string, size imaging.Size) (string, error) {
	dst, err := m.layout.ThumbFile(size.Name, imagePath)
	if err != nil {
		return "", err
	}

	rel := size.Name + "/" + strings.TrimSuffix(imagePath, path.Ext(imagePath)) + ".webp"

	if _, err := os.Stat(dst); err == nil {
		return rel, nil
	}

	src, err := m.layout.ImageFile(imagePath)
	if err != nil {
		return "", err
	}
	if err := m.resizer.Thumbnail(src, dst, size.Width); err != nil {
		return "", err
	}
	return rel, nil
}

// Walk returns every category in the tree rooted at parentPath,
// depth-first. Filesystem errors abort the affected branch and surface
// to the caller.
func (m *Mirror) Walk(parentPath string) ([]CategoryEntry, error) {
	cats, err := m.ListCategories(parentPath)
	if err != nil {
		return nil, err
	}

	all := cats
	for _, c := range cats {
		sub, err := m.Walk(c.Path)
		if err != nil {
			return nil, err
		}
		all = append(all, sub...)
	}
	return all, nil
}

// Sync walks the full category tree and upserts every discovered folder
// into the catalog store. New categories start with price 0 and
// active=true; existing ones get name and parent path refreshed. Rows
// for folders gone from disk are kept unless pruning is enabled, in
// which case they are deactivated (never deleted).
func (m *Mirror) Sync() (*SyncResult, error) {
	cats, err := m.Walk("")
	if err != nil {
		return nil, fmt.Errorf("sync walk: %w", err)
	}

	res := &SyncResult{Total: len(cats)}
	for _, c := range cats {
		created, err := m.catalog.UpsertSynced(c.Name, c.Path, c.ParentPath)
		if err != nil {
			return nil, fmt.Errorf("sync upsert %q: %w", c.Path, err)
		}
		if created {
			res.New++
		} else {
			res.Updated++
		}
	}

	if m.pruneStale {
		paths := make([]string, len(cats))
		for i, c := range cats {
			paths[i] = c.Path
		}
		n, err := m.catalog.DeactivateStale(paths)
		if err != nil {
			return nil, fmt.Errorf("sync prune: %w", err)
		}
		res.Deactivated = int(n)
	}

	slog.Info("category sync complete",
		"total", res.Total,
		"new", res.New,
		"updated", res.Updated,
		"deactivated", res.Deactivated,
	)
	return res, nil
}
