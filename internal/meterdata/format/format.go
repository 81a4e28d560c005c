// Package format decides which concrete parser handles a file, so the
// classification and aggregation stages stay format-agnostic.
package format

import (
	"strings"
	"unicode"

	"nem12-tou/internal/meterdata/domain"
	"nem12-tou/internal/meterdata/nem12"
	"nem12-tou/internal/meterdata/wide"
)

// Format identifies a supported input file format.
type Format string

const (
	FormatNEM12   Format = "nem12"
	FormatWide    Format = "generic_interval"
	FormatUnknown Format = "unknown"
)

// Parser is the capability both concrete parsers implement.
type Parser interface {
	Parse(content string) (*domain.ParseResult, error)
}

// Detect inspects the leading lines of a file and decides its format.
func Detect(content string) Format {
	lines := leadingLines(content, 10)
	if len(lines) == 0 {
		return FormatUnknown
	}

	first := lines[0]
	if strings.HasPrefix(first, "100") {
		return FormatNEM12
	}

	// A header row starting with a letter suggests the wide format; confirm
	// by looking for its marker columns.
	if r := []rune(first); len(r) > 0 && unicode.IsLetter(r[0]) {
		hasLength := false
		hasReading := false
		for _, col := range strings.Split(first, ",") {
			col = strings.TrimSpace(col)
			if col == "interval_length" {
				hasLength = true
			}
			if strings.Contains(col, "reading") && strings.Contains(col, "value") {
				hasReading = true
			}
		}
		if hasLength && hasReading {
			return FormatWide
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "200") || strings.HasPrefix(line, "300") {
			return FormatNEM12
		}
	}
	return FormatUnknown
}

// ParserFor returns the parser for a detected format.
func ParserFor(f Format) (Parser, error) {
	switch f {
	case FormatNEM12:
		return nem12.New(), nil
	case FormatWide:
		return wide.New(), nil
	}
	return nil, domain.ErrUnknownFormat
}

func leadingLines(content string, n int) []string {
	var lines []string
	for _, raw := range strings.SplitN(content, "\n", n+1) {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}
