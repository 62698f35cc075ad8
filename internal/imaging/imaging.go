// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging generates gallery thumbnails using libvips. Source
// images are resized to fixed widths and encoded as lossy WebP. The
// three sizes match the thumbnail directory names on disk.
package imaging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/davidbyttow/govips/v2/vips"
)

// Size describes one thumbnail breakpoint.
type Size struct {
	Name  string // Directory name: "small", "medium", "large"
	Width int    // Target width in pixels
}

// Sizes are the fixed thumbnail widths served by the gallery.
var Sizes = []Size{
	{Name: "small", Width: 200},
	{Name: "medium", Width: 400},
	{Name: "large", Width: 800},
}

// Quality is the WebP encoding quality for all thumbnails.
const Quality = 80

// Startup initialises the libvips library. Call once at application start.
// concurrency controls the number of libvips worker threads (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024, // 50 MB
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources. Call at application shutdown.
func Shutdown() {
	vips.Shutdown()
}

// Resizer produces a fixed-width lossy thumbnail file from a source
// image. The mirror checks for existing thumbnails before calling it.
type Resizer interface {
	Thumbnail(src, dst string, width int) error
}

// VipsResizer implements Resizer on libvips.
type VipsResizer struct{}

// Thumbnail reads src, resizes it to width (never upscaling), and writes
// a WebP file at dst. The write goes through a temp file and rename so a
// concurrent caller producing the same thumbnail cannot leave a torn
// file; losing the rename race is not an error.
func (VipsResizer) Thumbnail(src, dst string, width int) error {
	img, err := vips.NewThumbnailFromFile(src, width, 0, vips.InterestingNone)
	if err != nil {
		return fmt.Errorf("imaging: thumbnail %s (%dpx): %w", src, width, err)
	}
	defer img.Close()

	// Auto-rotate based on EXIF orientation, then strip metadata.
	if err := img.AutoRotate(); err != nil {
		return fmt.Errorf("imaging: autorotate %s: %w", src, err)
	}

	params := vips.NewWebpExportParams()
	params.Quality = Quality
	params.Lossless = false
	params.StripMetadata = true

	buf, _, err := img.ExportWebp(params)
	if err != nil {
		return fmt.Errorf("imaging: export %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("imaging: mkdir %s: %w", dst, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*")
	if err != nil {
		return fmt.Errorf("imaging: temp file: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("imaging: write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("imaging: close %s: %w", dst, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		// A concurrent caller may have produced dst first.
		if _, statErr := os.Stat(dst); statErr == nil {
			return nil
		}
		return fmt.Errorf("imaging: rename %s: %w", dst, err)
	}
	return nil
}
