package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/community-census-etl/internal/domain"
	"github.com/couchcryptid/community-census-etl/internal/observability"
)

// Downloader retrieves the raw bytes of a report by slug.
type Downloader interface {
	Download(ctx context.Context, slug string) ([]byte, error)
}

// DiskCache wraps a Downloader with a directory of previously fetched reports.
// A file's presence is the only cache signal; there is no expiry or checksum.
type DiskCache struct {
	inner   Downloader
	dir     string
	metrics *observability.Metrics
}

// NewDiskCache creates a cache decorator storing reports under dir.
func NewDiskCache(inner Downloader, dir string, metrics *observability.Metrics) *DiskCache {
	return &DiskCache{
		inner:   inner,
		dir:     dir,
		metrics: metrics,
	}
}

// Dir is the cache directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

// Path is where the report for slug is stored.
func (c *DiskCache) Path(slug string) string {
	return filepath.Join(c.dir, slug+".pdf")
}

// Fetch returns the cached report for slug, downloading it on a miss. On a
// download failure the returned Document still names the expected path so the
// caller can carry on to extraction.
func (c *DiskCache) Fetch(ctx context.Context, slug string) (domain.Document, error) {
	doc := domain.Document{Slug: slug, Path: c.Path(slug)}

	if _, err := os.Stat(doc.Path); err == nil {
		c.metrics.ReportCache.WithLabelValues("hit").Inc()
		doc.CacheHit = true
		return doc, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return doc, fmt.Errorf("stat cached report: %w", err)
	}
	c.metrics.ReportCache.WithLabelValues("miss").Inc()

	data, err := c.inner.Download(ctx, slug)
	if err != nil {
		return doc, err
	}
	if err := c.store(doc.Path, data); err != nil {
		c.metrics.ReportDownloads.WithLabelValues("write_error").Inc()
		return doc, err
	}
	return doc, nil
}

// store writes data next to its final path and renames it into place, so a
// partially written file is never seen as a cache hit.
func (c *DiskCache) store(path string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
