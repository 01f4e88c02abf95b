// Command validate checks a compiled community table against the community
// list it was built from. It verifies the header, that every community appears
// once per list entry, that no unknown communities are present, and that each count
// is either a plain number or N/A.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -list community-names.txt \
//	  -csv csv_files/calgary-immigrants-by-community.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"github.com/couchcryptid/community-census-etl/internal/adapter/table"
	"github.com/couchcryptid/community-census-etl/internal/config"
	"github.com/couchcryptid/community-census-etl/internal/domain"
)

var countPattern = regexp.MustCompile(`^\d+$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	listPath := flag.String("list", cfg.CommunityList, "community list the table was compiled from")
	csvPath := flag.String("csv", cfg.OutputPath(), "compiled CSV table to check")
	flag.Parse()

	if *listPath == "" || *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*listPath, *csvPath, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(listPath, csvPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== Community Table Validation ===")
	fmt.Fprintln(out)

	communities, err := domain.ReadCommunities(listPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load community list: %v\n", err)
		return 1
	}
	header, err := table.ReadHeader(csvPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read table header: %v\n", err)
		return 1
	}
	rows, err := table.ReadRows(csvPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read table rows: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateHeader(header),
		validateCoverage(communities, rows),
		validateFields(rows),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Communities: %d listed, %d rows, %d complete\n",
		len(communities), len(rows), countComplete(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: Header ──

func validateHeader(header []string) *phase {
	p := &phase{name: "Phase 1: Header"}
	if !slices.Equal(header, domain.Header) {
		p.errorf("header is %q, expected %q", header, domain.Header)
	}
	return p
}

// ── Phase 2: Coverage ──
// Every list entry yields exactly one row and nothing else appears. A name
// listed twice is compiled twice, so it owes two rows.

func validateCoverage(communities []domain.Community, rows []domain.Row) *phase {
	p := &phase{name: "Phase 2: Community Coverage"}

	listed := make(map[string]int, len(communities))
	var order []string
	for _, c := range communities {
		if listed[c.Label] == 0 {
			order = append(order, c.Label)
		}
		listed[c.Label]++
	}

	seen := make(map[string]int, len(rows))
	for i, r := range rows {
		seen[r.Community]++
		if listed[r.Community] == 0 {
			p.errorf("row %d: community %q is not in the list", i+2, r.Community)
		}
	}
	for _, label := range order {
		want, got := listed[label], seen[label]
		switch {
		case got == 0:
			p.errorf("community %q has no row", label)
		case got != want:
			p.errorf("community %q appears %d times, listed %d times", label, got, want)
		}
	}
	return p
}

// ── Phase 3: Field Format ──

func validateFields(rows []domain.Row) *phase {
	p := &phase{name: "Phase 3: Field Format"}
	for i, r := range rows {
		if !validCount(r.Immigrants) {
			p.errorf("row %d (%s): Immigrants %q is neither a number nor N/A", i+2, r.Community, r.Immigrants)
		}
		if !validCount(r.NonImmigrants) {
			p.errorf("row %d (%s): Non-Immigrants %q is neither a number nor N/A", i+2, r.Community, r.NonImmigrants)
		}
	}
	return p
}

func validCount(s string) bool {
	return s == domain.NotAvailable || countPattern.MatchString(s)
}

func countComplete(rows []domain.Row) int {
	n := 0
	for _, r := range rows {
		if r.Immigrants != domain.NotAvailable && r.NonImmigrants != domain.NotAvailable {
			n++
		}
	}
	return n
}
