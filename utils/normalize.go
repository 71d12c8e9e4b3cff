// utils/normalize.go
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey canonicalizes a municipality name for catalog lookups:
// trimmed, lower-cased, diacritics removed ("Bogotá " -> "bogota").
func NormalizeKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	// The chain is stateful, so build one per call rather than sharing it
	// across goroutines.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripper, s)
	if err != nil {
		return s
	}
	return out
}
