package spots

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold returns the case-folded form of s. A Caser is stateful, so each call
// gets its own; assignment workers call this concurrently.
func fold(s string) string {
	return cases.Fold().String(s)
}

// languageAliases maps traffic-system language codes to the names used on
// programming grids.
var languageAliases = map[string]string{
	"m":   "mandarin",
	"c":   "cantonese",
	"v":   "vietnamese",
	"t":   "tagalog",
	"k":   "korean",
	"j":   "japanese",
	"e":   "english",
	"sa":  "south asian",
	"hm":  "hmong",
	"chi": "chinese",
}

// NormalizeLanguage folds case, trims, and expands known language codes.
func NormalizeLanguage(value string) string {
	folded := fold(strings.TrimSpace(value))
	if folded == "" {
		return ""
	}
	if name, ok := languageAliases[folded]; ok {
		return name
	}
	return folded
}

// SameLanguage compares two language identifiers after normalization.
func SameLanguage(a, b string) bool {
	na, nb := NormalizeLanguage(a), NormalizeLanguage(b)
	return na != "" && na == nb
}

// ContainsFold reports whether substr occurs in s ignoring case. Empty patterns never match.
func ContainsFold(s, substr string) bool {
	substr = strings.TrimSpace(substr)
	if substr == "" {
		return false
	}
	return strings.Contains(fold(s), fold(substr))
}
