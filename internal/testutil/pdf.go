// Package testutil builds fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/community-census-etl/internal/mockreport"
)

// WriteReport writes a synthetic report to dir/<slug>.pdf and returns its path.
func WriteReport(t testing.TB, dir, slug, pageEight string) string {
	t.Helper()
	path := filepath.Join(dir, slug+".pdf")
	if err := os.WriteFile(path, mockreport.BuildPDF(mockreport.ReportPages(pageEight)), 0o600); err != nil {
		t.Fatalf("write report fixture: %v", err)
	}
	return path
}
