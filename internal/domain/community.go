package domain

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// NormalizeMode selects which form Normalize produces.
type NormalizeMode int

const (
	// ModeSlug produces URL-safe lowercase identifiers.
	ModeSlug NormalizeMode = iota
	// ModeLabel produces uppercase display labels.
	ModeLabel
)

// slugSeparatorRe matches runs of the characters that become a single hyphen in a slug.
var slugSeparatorRe = regexp.MustCompile(`[ /.]+`)

// Community is one entry of the community list.
type Community struct {
	Name  string // ASCII-cleaned display name as it appeared in the list
	Slug  string
	Label string
}

// Normalize converts raw list text into one token per non-empty line.
func Normalize(raw string, mode NormalizeMode) []string {
	lines := cleanLines(raw)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		switch mode {
		case ModeLabel:
			out = append(out, labelOf(line))
		default:
			out = append(out, slugOf(line))
		}
	}
	return out
}

// NormalizeCommunities derives slug and label from the same cleaned line, so
// the i-th slug and the i-th label always belong to the same community.
func NormalizeCommunities(raw string) []Community {
	lines := cleanLines(raw)
	communities := make([]Community, 0, len(lines))
	for _, line := range lines {
		communities = append(communities, Community{
			Name:  line,
			Slug:  slugOf(line),
			Label: labelOf(line),
		})
	}
	return communities
}

// ReadCommunities loads and normalizes a community list file.
func ReadCommunities(path string) ([]Community, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read community list: %w", err)
	}
	return NormalizeCommunities(string(data)), nil
}

// StripNonASCII removes every character outside the 0-127 range. Invalid
// UTF-8 bytes are removed as well.
func StripNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cleanLines(raw string) []string {
	cleaned := StripNonASCII(raw)
	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func slugOf(line string) string {
	return slugSeparatorRe.ReplaceAllString(strings.ToLower(line), "-")
}

func labelOf(line string) string {
	return strings.ToUpper(line)
}
