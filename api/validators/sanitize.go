package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims the input, collapses runs of whitespace into single
// spaces and caps the result at maxLen runes. A maxLen of zero disables the cap.
func SanitizeString(input string, maxLen int) string {
	collapsed := strings.Join(strings.Fields(input), " ")
	if maxLen <= 0 || utf8.RuneCountInString(collapsed) <= maxLen {
		return collapsed
	}
	runes := []rune(collapsed)
	return strings.TrimSpace(string(runes[:maxLen]))
}
