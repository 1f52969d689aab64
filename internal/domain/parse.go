package domain

import (
	"strconv"
	"strings"
)

// ParsePopulation parses a locale-formatted population string ("1.234,5" →
// 1234.5). Thousands dots are removed and the decimal comma converted before
// parsing. The second return is false when the text is empty or not numeric
// after cleaning; the caller degrades the value to null rather than failing.
func ParsePopulation(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", ".")

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
