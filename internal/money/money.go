// Package money parses and formats euro amounts typed by users.
package money

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Parse converts free-form amount text into a non-negative decimal.
// It accepts a comma or dot decimal separator, dot-grouped thousands,
// an optional euro sign and surrounding whitespace. Text that cannot be
// read as a number yields zero, as does any negative result.
//
//	"450,00"    -> 450
//	"1.234,56"  -> 1234.56
//	"€ 1234,56" -> 1234.56
func Parse(raw string) decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero
	}

	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '€' {
			return -1
		}
		return r
	}, trimmed)
	s = dropThousandsDots(s)
	s = strings.Replace(s, ",", ".", 1)
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// dropThousandsDots removes every '.' that is followed by exactly three
// digits and then a non-digit or the end of the string.
func dropThousandsDots(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '.' && isGroup(s, i+1) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isGroup(s string, at int) bool {
	if at+3 > len(s) {
		return false
	}
	for j := at; j < at+3; j++ {
		if !isDigit(s[j]) {
			return false
		}
	}
	return at+3 == len(s) || !isDigit(s[at+3])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// ParsePositiveInt reads a whole count such as passengers or nights.
// Blank, non-numeric or non-positive text returns fallback.
func ParsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// CeilTo rounds d up to the next multiple of step.
func CeilTo(d, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return d.Ceil()
	}
	return d.Div(step).Ceil().Mul(step)
}

// Format renders d the French way with two decimals, e.g. "1 234,56 €".
func Format(d decimal.Decimal) string {
	return format(d, 2) + " €"
}

// FormatWhole renders d rounded to whole euros, e.g. "1 235 €".
func FormatWhole(d decimal.Decimal) string {
	return format(d, 0) + " €"
}

// FormatPlain renders d like Format without the currency sign.
func FormatPlain(d decimal.Decimal) string {
	return format(d, 2)
}

func format(d decimal.Decimal, places int32) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(places)

	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart)
	if frac != "" {
		out += "," + frac
	}
	if neg && !d.Round(places).IsZero() {
		out = "-" + out
	}
	return out
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
