// Package normalize converts raw numeric literals from filings into
// canonical magnitudes expressed in millions of the reporting currency.
package normalize

import (
	"strconv"
	"strings"
)

// Scale factors relative to the millions baseline.
const (
	trillionFactor = 1000000.0
	billionFactor  = 1000.0
	thousandsDiv   = 1000.0
)

// ToMillions converts a captured numeric literal into millions of the
// reporting currency. unitContext is the text surrounding the literal
// (typically the full pattern match); literal and context together are
// scanned for scale words. trillion multiplies by 1,000,000; billion or
// "bn" by 1,000; a thousands marker ("'000") divides by 1,000; "million"
// or no marker is the identity, which makes the conversion idempotent on
// already-normalized values. Returns (0, false) when the literal has no
// parseable digits. Never panics.
func ToMillions(literal, unitContext string) (float64, bool) {
	cleaned := cleanLiteral(literal)
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	hint := strings.ToLower(literal + " " + unitContext)
	switch {
	case strings.Contains(hint, "trillion"):
		value *= trillionFactor
	case strings.Contains(hint, "billion"), strings.Contains(hint, "bn"):
		value *= billionFactor
	case strings.Contains(hint, "'000"):
		value /= thousandsDiv
	}
	return value, true
}

// cleanLiteral drops every character other than digits and the decimal
// point, which removes thousands separators, currency codes, and
// whitespace in one pass.
func cleanLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
