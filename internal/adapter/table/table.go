// Package table writes compiled rows to the CSV output table.
package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/couchcryptid/community-census-etl/internal/domain"
	"github.com/gocarina/gocsv"
)

// WriteMode selects how Open treats an existing table.
type WriteMode string

const (
	// WriteTruncate replaces any existing table and writes the header.
	WriteTruncate WriteMode = "w"
	// WriteAppend adds rows to the end of an existing table.
	WriteAppend WriteMode = "a"
)

// ErrInvalidWriteMode is returned by Open for a mode other than WriteTruncate or WriteAppend.
var ErrInvalidWriteMode = errors.New(`invalid write mode, must be "w" or "a"`)

// Table is a CSV file that rows are appended to. It implements pipeline.RowSink
// and is safe for concurrent use; each row is written whole under a lock.
type Table struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// Open opens the table at path. WriteTruncate starts a fresh table with the
// Community,Immigrants,Non-Immigrants header.
func Open(path string, mode WriteMode) (*Table, error) {
	var (
		f   *os.File
		err error
	)
	switch mode {
	case WriteTruncate:
		f, err = os.Create(path)
	case WriteAppend:
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidWriteMode, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}

	t := &Table{file: f, path: path}
	if mode == WriteTruncate {
		if err := t.writeHeader(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return t, nil
}

// Path is the table's file path.
func (t *Table) Path() string {
	return t.path
}

func (t *Table) writeHeader() error {
	w := gocsv.DefaultCSVWriter(t.file)
	if err := w.Write(domain.Header); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	return nil
}

// WriteRow appends one row.
func (t *Table) WriteRow(_ context.Context, row domain.Row) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := gocsv.MarshalWithoutHeaders([]domain.Row{row}, t.file); err != nil {
		return fmt.Errorf("append row for %s: %w", row.Community, err)
	}
	return nil
}

// Close closes the underlying file.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}

// ReadRows loads every data row of the table at path.
func ReadRows(path string) ([]domain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	var rows []domain.Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return rows, nil
}

// ReadHeader returns the first record of the table at path.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}
	return header, nil
}
