// internal/util/folder.go
package util

import (
	"strings"
)

const (
	// DefaultSeriesNumber is used when a series carries no SeriesNumber
	DefaultSeriesNumber = "000"
	// DefaultSeriesDescription is used when a series carries no SeriesDescription
	DefaultSeriesDescription = "Unknown"
	// SeriesNumberWidth is the zero-padded width of the series number prefix
	SeriesNumberWidth = 3
)

// ZeroFill left-pads s with zeros up to width, keeping a leading sign in front.
// "7" -> "007", "-5" -> "-05", "1234" -> "1234"
func ZeroFill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := strings.Repeat("0", width-len(s))
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[:1] + pad + s[1:]
	}
	return pad + s
}

// SeriesFolderName builds the destination folder for a series:
// <zero-padded number>-<description>, with spaces in the description
// turned into underscores and illegal characters stripped.
// Empty number or description pointers fall back to the defaults
func SeriesFolderName(number, description *string) string {
	num := DefaultSeriesNumber
	if number != nil {
		num = *number
	}
	desc := DefaultSeriesDescription
	if description != nil {
		desc = *description
	}
	desc = strings.ReplaceAll(desc, " ", "_")

	return SanitizeFilename(ZeroFill(num, SeriesNumberWidth) + "-" + desc)
}
