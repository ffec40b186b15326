// Package normalize contains pure field normalizers: locale price
// tokens, condition vocabulary and bounded text truncation.
package normalize

import (
	"strconv"
	"strings"
)

// ParsePrice coerces a locale-formatted numeric token into a
// non-negative amount. Space (including NBSP) is treated as a
// thousands separator, comma or dot as the decimal separator.
// Malformed input returns ok=false, never an error or a panic;
// callers render unrecognized prices as 0.
func ParsePrice(token string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(token))

	if cleaned == "" {
		return 0, false
	}

	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
