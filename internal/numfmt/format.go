// Package numfmt formats label totals with user-chosen separators.
package numfmt

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Private-use runes never produced by the English printer.
const (
	decimalToken   = "\uE000"
	thousandsToken = "\uE001"
)

var en = message.NewPrinter(language.English)

// Format renders v with the given number of decimals, grouping thousands.
func Format(v float64, decimals int, decimalSep, thousandsSep string) string {
	return Localize(English(v, decimals), decimalSep, thousandsSep)
}

// English renders v as "1,234.50" style text.
func English(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	sign := ""
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	if v < 0 && strings.Trim(s, "0.") != "" {
		sign = "-"
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// beyond int64: leave ungrouped
		return sign + s
	}
	out := sign + en.Sprintf("%d", n)
	if decimals > 0 {
		out += "." + frac
	}
	return out
}

// Localize swaps English separators for the requested ones. Both are first
// moved to placeholder tokens so neither substitution can see the other's
// output, which keeps identical or overlapping separators intact.
func Localize(s, decimalSep, thousandsSep string) string {
	s = strings.ReplaceAll(s, ".", decimalToken)
	s = strings.ReplaceAll(s, ",", thousandsToken)
	s = strings.ReplaceAll(s, thousandsToken, thousandsSep)
	return strings.ReplaceAll(s, decimalToken, decimalSep)
}
