package engine

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ============================================================================
// FORMATTING — Display strings for amounts, counts and rates
// ============================================================================
// Numbers follow Indonesian conventions: "." groups thousands and "," is the
// decimal separator. The compact suffixes keep a "." decimal point, matching
// how recap reports abbreviate large amounts.
// ============================================================================

var displayLanguage = language.Indonesian

// FormatCompact abbreviates an amount:
//
//	≥ 1e9 → "1.25B"
//	≥ 1e6 → "3.5M"
//	≥ 1e3 → "750.0K"
//	else  → Indonesian grouping, up to 3 fraction digits
func FormatCompact(v float64) string {
	switch {
	case v >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', 2, 64) + "B"
	case v >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case v >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "K"
	}
	p := message.NewPrinter(displayLanguage)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatRupiah is FormatCompact with the "Rp " prefix.
func FormatRupiah(v float64) string {
	return "Rp " + FormatCompact(v)
}

// FormatCount groups an integer with Indonesian separators: 1234567 → "1.234.567".
func FormatCount(n int) string {
	p := message.NewPrinter(displayLanguage)
	return p.Sprintf("%d", n)
}

// FormatPercent renders a percentage with two decimals: 33.333 → "33.33%".
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}
