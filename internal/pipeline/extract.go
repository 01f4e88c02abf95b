package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/community-census-etl/internal/domain"
)

// PageReader returns the plain text of one page of a report.
type PageReader interface {
	PageText(path string, page int) (string, error)
}

// DocumentValidator checks a report's structure before it is read.
type DocumentValidator interface {
	Validate(path string) error
}

// ReportExtractor implements Extractor by reading a fixed page of each report
// and applying the domain field lookups.
type ReportExtractor struct {
	reader    PageReader
	validator DocumentValidator
	page      int
	logger    *slog.Logger
}

// NewExtractor creates a ReportExtractor for the given 1-indexed page. Pass a
// nil validator to skip structural validation.
func NewExtractor(reader PageReader, validator DocumentValidator, page int, logger *slog.Logger) *ReportExtractor {
	return &ReportExtractor{
		reader:    reader,
		validator: validator,
		page:      page,
		logger:    logger,
	}
}

// Extract never fails: a report that is missing, corrupt, or too short yields
// N/A for both fields with a status saying why.
func (e *ReportExtractor) Extract(_ context.Context, doc domain.Document) domain.Extraction {
	if e.validator != nil {
		if err := e.validator.Validate(doc.Path); err != nil {
			e.logger.Warn("report failed validation", "slug", doc.Slug, "error", err)
			return domain.FailedExtraction(domain.StatusForError(err))
		}
	}

	text, err := e.reader.PageText(doc.Path, e.page)
	if err != nil {
		e.logger.Debug("report page unreadable", "slug", doc.Slug, "page", e.page, "error", err)
		return domain.FailedExtraction(domain.StatusForError(err))
	}
	return domain.NewExtraction(domain.ExtractFields(text))
}
