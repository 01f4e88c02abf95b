// Command genmock writes synthetic community profile reports for every
// community in a list, plus the table a compile over them should produce. The
// reports go straight into the report cache, so the census tool runs fully
// offline against them.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -list community-names.txt \
//	  -cache-dir pdf_files \
//	  -expected data/mock/expected.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/community-census-etl/internal/adapter/table"
	"github.com/couchcryptid/community-census-etl/internal/domain"
	"github.com/couchcryptid/community-census-etl/internal/mockreport"
	"github.com/jonboulle/clockwork"
)

// Every partialEvery-th community omits its non-immigrant count so the
// generated set exercises N/A rows.
const partialEvery = 7

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	listPath := flag.String("list", "community-names.txt", "community list to generate reports for")
	cacheDir := flag.String("cache-dir", "pdf_files", "directory to write <slug>.pdf reports into")
	expected := flag.String("expected", "", "optional output path for the expected compiled table")
	flag.Parse()

	if *listPath == "" || *cacheDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -list, -cache-dir")
	}

	// Fixed clock for reproducible row timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	communities, err := domain.ReadCommunities(*listPath)
	if err != nil {
		return err
	}

	rows, err := generate(communities, *cacheDir)
	if err != nil {
		return err
	}
	log.Printf("wrote %d reports to %s", len(rows), *cacheDir)

	if *expected != "" {
		if err := writeExpected(*expected, rows); err != nil {
			return fmt.Errorf("writing expected table: %w", err)
		}
		log.Printf("wrote expected table: %s", *expected)
	}

	printStats(rows)
	return nil
}

// generate writes one report per community and returns the rows a compile
// would extract from them, in list order.
func generate(communities []domain.Community, dir string) ([]domain.Row, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	rows := make([]domain.Row, 0, len(communities))
	for i, c := range communities {
		fields := mockFields(c.Slug, (i+1)%partialEvery == 0)
		body := mockreport.BuildPDF(mockreport.ReportPages(pageText(fields)))
		if err := os.WriteFile(filepath.Join(dir, c.Slug+".pdf"), body, 0o644); err != nil {
			return nil, fmt.Errorf("write report %s: %w", c.Slug, err)
		}
		rows = append(rows, domain.NewRow(c, fields))
	}
	return rows, nil
}

// mockFields derives stable counts from the slug.
func mockFields(slug string, partial bool) domain.Fields {
	h := fnv.New32a()
	_, _ = h.Write([]byte(slug))
	sum := h.Sum32()

	f := domain.Fields{
		Immigrants:    strconv.Itoa(int(sum%9000) + 100),
		NonImmigrants: strconv.Itoa(int(sum/9000%20000) + 500),
	}
	if partial {
		f.NonImmigrants = domain.NotAvailable
	}
	return f
}

// pageText renders the immigrant status section the way the published
// profiles print it, with thousands separators.
func pageText(f domain.Fields) string {
	var b strings.Builder
	b.WriteString("Immigrant Status")
	if f.Immigrants != domain.NotAvailable {
		b.WriteString(" Immigrants " + withCommas(f.Immigrants))
	}
	if f.NonImmigrants != domain.NotAvailable {
		b.WriteString(" Non-immigrants " + withCommas(f.NonImmigrants))
	}
	return b.String()
}

func withCommas(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func writeExpected(path string, rows []domain.Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tbl, err := table.Open(path, table.WriteTruncate)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.WriteRow(context.Background(), r); err != nil {
			_ = tbl.Close()
			return err
		}
	}
	return tbl.Close()
}

func printStats(rows []domain.Row) {
	partial := 0
	for _, r := range rows {
		if r.NonImmigrants == domain.NotAvailable {
			partial++
		}
	}
	fmt.Println()
	fmt.Println("=== Mock Report Statistics ===")
	fmt.Printf("  Reports:           %d\n", len(rows))
	fmt.Printf("  Complete:          %d\n", len(rows)-partial)
	fmt.Printf("  Missing non-immigrant count: %d\n", partial)
}
