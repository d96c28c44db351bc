// Package metricutil normalizes the string-typed numbers reported by
// the portal (currency amounts with rupee signs and thousands commas,
// percentages with a literal % suffix, "-" placeholders) into decimals.
// Anything unparseable becomes zero, mirroring how the numbers are
// consumed downstream. This is lossy on purpose.
package metricutil

import (
	"strings"

	"github.com/shopspring/decimal"
)

// the portal serves utf-8 but some exports carry the rupee sign
// double-encoded as cp1252 ("â‚¹")
var numberCruft = strings.NewReplacer(
	"₹", "",
	"â‚¹", "",
	",", "",
	"%", "",
)

// TryParseNumber parses a portal-reported numeric string. The second
// return is false when the value is empty, a "-" placeholder, or not
// a number at all.
func TryParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(numberCruft.Replace(s))
	if s == "" || s == "-" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseNumber is TryParseNumber with the unparseable→zero policy applied.
func ParseNumber(s string) decimal.Decimal {
	d, _ := TryParseNumber(s)
	return d
}
