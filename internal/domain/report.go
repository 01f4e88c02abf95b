package domain

import (
	"errors"
	"time"
)

var (
	// ErrDocumentNotFound means no report exists at the expected path.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument means the report exists but is not a readable PDF.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrPageOutOfRange means the report has fewer pages than requested.
	ErrPageOutOfRange = errors.New("page out of range")
)

// StatusForError maps a report reading error to an extraction status.
func StatusForError(err error) ExtractionStatus {
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return StatusAbsent
	case errors.Is(err, ErrPageOutOfRange):
		return StatusNoPage
	default:
		return StatusInvalid
	}
}

// Document is a cached community report on local disk.
type Document struct {
	Slug     string
	Path     string
	CacheHit bool
}

// ExtractionStatus classifies how extraction of a report went.
type ExtractionStatus string

const (
	StatusComplete ExtractionStatus = "complete" // both fields found
	StatusPartial  ExtractionStatus = "partial"  // one field found
	StatusEmpty    ExtractionStatus = "empty"    // page read, neither field found
	StatusAbsent   ExtractionStatus = "absent"   // no document on disk
	StatusInvalid  ExtractionStatus = "invalid"  // document unreadable or corrupt
	StatusNoPage   ExtractionStatus = "no_page"  // document shorter than the report page
)

// Extraction is the outcome of reading one report.
type Extraction struct {
	Fields
	Status ExtractionStatus
}

// NewExtraction classifies fields read from a report page.
func NewExtraction(f Fields) Extraction {
	switch {
	case f.Complete():
		return Extraction{Fields: f, Status: StatusComplete}
	case f.Empty():
		return Extraction{Fields: f, Status: StatusEmpty}
	default:
		return Extraction{Fields: f, Status: StatusPartial}
	}
}

// FailedExtraction is an N/A result for a report that could not be read.
func FailedExtraction(status ExtractionStatus) Extraction {
	return Extraction{Fields: MissingFields, Status: status}
}

// Row is one line of the output table. Slug and ProcessedAt are carried for
// downstream publishers and are not written to the CSV.
type Row struct {
	Community     string    `csv:"Community" json:"community"`
	Immigrants    string    `csv:"Immigrants" json:"immigrants"`
	NonImmigrants string    `csv:"Non-Immigrants" json:"non_immigrants"`
	Slug          string    `csv:"-" json:"slug"`
	ProcessedAt   time.Time `csv:"-" json:"processed_at"`
}

// Header is the column header of the output table.
var Header = []string{"Community", "Immigrants", "Non-Immigrants"}

// NewRow builds the output row for a community, stamped with the current time.
func NewRow(c Community, f Fields) Row {
	return Row{
		Community:     c.Label,
		Immigrants:    f.Immigrants,
		NonImmigrants: f.NonImmigrants,
		Slug:          c.Slug,
		ProcessedAt:   clock.Now(),
	}
}
