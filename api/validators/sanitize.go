package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString trims surrounding whitespace and caps the result at maxLen
// characters. Column limits count characters, so the cut never lands inside
// a multi-byte rune. A non-positive maxLen disables the cap.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}
	n := 0
	for i := range trimmed {
		if n == maxLen {
			return strings.TrimRightFunc(trimmed[:i], unicode.IsSpace)
		}
		n++
	}
	return trimmed
}
