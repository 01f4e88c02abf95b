// Package pdf reads community profile reports from disk.
package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/couchcryptid/community-census-etl/internal/domain"
	lpdf "github.com/ledongthuc/pdf"
)

// Reader extracts plain text from individual report pages.
type Reader struct{}

// NewReader creates a page text reader.
func NewReader() *Reader {
	return &Reader{}
}

// PageText returns the plain text of the 1-indexed page of the PDF at path.
func (r *Reader) PageText(path string, page int) (text string, err error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %s: %v", domain.ErrInvalidDocument, path, rec)
		}
	}()

	f, doc, err := lpdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidDocument, path, err)
	}
	defer f.Close()

	if page < 1 || page > doc.NumPage() {
		return "", fmt.Errorf("%w: page %d of %d", domain.ErrPageOutOfRange, page, doc.NumPage())
	}
	p := doc.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("%w: page %d", domain.ErrPageOutOfRange, page)
	}

	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: extract page %d: %v", domain.ErrInvalidDocument, page, err)
	}
	return text, nil
}
