// Package util provides naming helpers for organized DICOM folders.
package util

import "strings"

// IllegalFilenameChars lists the characters stripped from folder names
const IllegalFilenameChars = `\/:*?"<>|`

// SanitizeFilename removes every character that is not allowed in a file name.
// Characters are dropped, not replaced
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(IllegalFilenameChars, r) {
			return -1
		}
		return r
	}, name)
}
