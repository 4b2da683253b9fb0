// Package core holds the record model: bills, transactions, their
// content-derived identities and the amount/date normalisation rules the
// source documents need.
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// currency suffixes seen on Icelandic bills and statement exports.
var currencySuffixes = []string{"kr.", "kr", "isk"}

// ParseAmount converts a decimal string to a decimal value.
//
// Both "," and "." are accepted as the decimal separator. When both occur,
// the one that appears last is the decimal separator and the other is a
// thousands separator. A separator that appears more than once is always a
// thousands separator. Spaces (including non-breaking ones) are ignored and a
// trailing currency marker is dropped.
//
// Examples:
//
//	ParseAmount("12.345,67") -> 12345.67
//	ParseAmount("12,345.67") -> 12345.67
//	ParseAmount("12345,67")  -> 12345.67
//	ParseAmount("1.234.567") -> 1234567
//	ParseAmount("-4 500 kr") -> -4500
func ParseAmount(s string) (decimal.Decimal, error) {
	s = cleanAmountText(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	sign := ""
	switch s[0] {
	case '-':
		sign = "-"
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart := splitDecimal(s)
	intPart = strings.NewReplacer(",", "", ".", "").Replace(intPart)
	if intPart == "" && fracPart == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if intPart == "" {
		intPart = "0"
	}

	normalized := sign + intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d, nil
}

// ParseBillAmount is the lenient variant used for extracted bill totals.
// Text without digits, or text that does not parse, yields a null amount.
func ParseBillAmount(s string) decimal.NullDecimal {
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return decimal.NullDecimal{}
	}
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// FormatKronur renders an amount truncated to whole units, as shown to the
// assistant and in listings.
func FormatKronur(d decimal.Decimal) string {
	return d.Truncate(0).String()
}

func cleanAmountText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r == '\u2212' {
			return '-'
		}
		return r
	}, s)
	lower := strings.ToLower(s)
	for _, suffix := range currencySuffixes {
		if strings.HasSuffix(lower, suffix) {
			s = s[:len(s)-len(suffix)]
			break
		}
	}
	return s
}

func splitDecimal(s string) (string, string) {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		sep := max(lastComma, lastDot)
		return s[:sep], s[sep+1:]
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return s, ""
		}
		return s[:lastComma], s[lastComma+1:]
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return s, ""
		}
		return s[:lastDot], s[lastDot+1:]
	default:
		return s, ""
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
