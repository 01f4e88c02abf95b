package domain

import (
	"regexp"
	"strings"
)

// NotAvailable marks a field whose pattern was not found in the page text.
const NotAvailable = "N/A"

var (
	// immigrantsRe matches the count following "Immigrants ", e.g. "Immigrants 1,234" -> "1,234".
	immigrantsRe = regexp.MustCompile(`Immigrants ([\d,]+)`)

	// nonImmigrantsRe matches the count following the lowercase tail of "Non-immigrants".
	nonImmigrantsRe = regexp.MustCompile(`immigrants ([\d,]+)`)
)

// Fields holds the two extracted values as plain digit strings or NotAvailable.
type Fields struct {
	Immigrants    string
	NonImmigrants string
}

// MissingFields is the result for a report that could not be read at all.
var MissingFields = Fields{Immigrants: NotAvailable, NonImmigrants: NotAvailable}

// ExtractFields applies both lookups to a page of report text.
func ExtractFields(text string) Fields {
	return Fields{
		Immigrants:    firstCount(immigrantsRe, text),
		NonImmigrants: firstCount(nonImmigrantsRe, text),
	}
}

// Complete reports whether both fields were found.
func (f Fields) Complete() bool {
	return f.Immigrants != NotAvailable && f.NonImmigrants != NotAvailable
}

// Empty reports whether neither field was found.
func (f Fields) Empty() bool {
	return f.Immigrants == NotAvailable && f.NonImmigrants == NotAvailable
}

// firstCount returns the leftmost match with thousands separators removed.
// A match made only of commas carries no digits and counts as absent.
func firstCount(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return NotAvailable
	}
	digits := strings.ReplaceAll(m[1], ",", "")
	if digits == "" {
		return NotAvailable
	}
	return digits
}
