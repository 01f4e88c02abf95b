// Package domain models City of Calgary community profile reports and the
// immigration figures extracted from them.
//
// # Data Source
//
// Each residential community has a statistical profile published as a PDF under
// a single base URL, named after the community's slug:
//
//	<base>/<slug>.pdf  →  e.g. .../community-profiles/forest-lawn-dover.pdf
//
// The list of communities is a plain-text file with one display name per line,
// e.g. "Forest Lawn/Dover" or "Mount Royal". Names may carry stray non-ASCII
// characters (non-breaking spaces, smart quotes); those are dropped, not replaced.
//
// # Naming Conventions
//
// Slug (URL form):
//
//	lowercase, with every run of spaces, slashes or dots collapsed into one "-".
//	"Forest Lawn/Dover" → "forest-lawn-dover", "St. Andrews Heights" → "st-andrews-heights".
//
// Label (table form):
//
//	uppercase, otherwise untouched. "Forest Lawn/Dover" → "FOREST LAWN/DOVER".
//
// Slug and label are always derived from the same cleaned line, see [NormalizeCommunities].
//
// # Extracted Fields
//
// Page 8 of a profile holds the "Immigrant Status" table. Its text layer reads
// like "Immigrants 1,234 Non-immigrants 5,678". Two lookups run independently:
//
//	Immigrants:     digits and commas right after "Immigrants "
//	Non-Immigrants: digits and commas right after "immigrants " (lowercase i,
//	                the tail of "Non-immigrants")
//
// Thousands separators are removed and the value is kept as a string. A field
// with no match is reported as [NotAvailable] ("N/A").
package domain
