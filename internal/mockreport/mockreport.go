// Package mockreport renders synthetic community profile reports: minimal,
// well-formed PDFs whose text layer reads back verbatim.
package mockreport

import (
	"bytes"
	"fmt"
	"strings"
)

// Pages is the page count of a community profile.
const Pages = 8

// BuildPDF returns a minimal, well-formed PDF with one page per entry in pages.
// Each page shows its text as a single Helvetica string, so a plain-text
// extractor reads it back verbatim.
func BuildPDF(pages []string) []byte {
	var buf bytes.Buffer
	// Object layout: 1 catalog, 2 page tree, 3 font, then a page and its
	// content stream for each page.
	total := 3 + 2*len(pages)
	offsets := make([]int, total+1)

	buf.WriteString("%PDF-1.4\n")
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, text := range pages {
		pageNum := 4 + 2*i
		contentNum := pageNum + 1
		writeObj(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentNum))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escapeString(text))
		writeObj(contentNum, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= total; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n", total+1, xref)
	buf.WriteString("%%EOF\n")
	return buf.Bytes()
}

// ReportPages returns eight pages of filler with pageEight as the eighth page,
// the layout of a community profile.
func ReportPages(pageEight string) []string {
	pages := make([]string, Pages)
	for i := range pages {
		pages[i] = fmt.Sprintf("Community profile page %d", i+1)
	}
	pages[Pages-1] = pageEight
	return pages
}

func escapeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
