// Package format renders monetary and percentage values for result rows.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotApplicable is rendered in place of a percentage whose baseline is zero.
const NotApplicable = "N/A"

var printer = message.NewPrinter(language.English)

// Currency renders v as US dollars with thousands separators and two
// decimals, e.g. "$1,234.50" or "$-19.60". Digits come from the decimal
// itself, so the result is exact at any magnitude.
func Currency(v decimal.Decimal) string {
	fixed := v.Round(2).StringFixed(2)
	sign := ""
	if rest, ok := strings.CutPrefix(fixed, "-"); ok {
		sign, fixed = "-", rest
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return "$" + sign + groupThousands(whole) + "." + frac
}

// maxInt64Digits is the longest digit string that always fits an int64.
const maxInt64Digits = 18

// groupThousands inserts English thousands separators into a string of
// ASCII digits.
func groupThousands(digits string) string {
	if len(digits) <= maxInt64Digits {
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
			return printer.Sprintf("%d", n)
		}
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Percent renders v with two decimals followed by "%", e.g. "28.00%".
func Percent(v decimal.Decimal) string {
	return v.StringFixed(2) + "%"
}

// ParseCurrency parses a string produced by Currency back into a decimal.
func ParseCurrency(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, fmt.Errorf("parse currency %q: empty value", s)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse currency %q: %w", s, err)
	}
	return d, nil
}
