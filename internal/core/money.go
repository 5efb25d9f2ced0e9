// Package core holds the ledger's domain types: employees, attendance
// entries, money amounts and the balance arithmetic over them.
//
// This file contains money parsing and formatting. Amounts travel as
// integer cents; strings only appear at the user-input and display
// boundaries.
package core

import (
	"strings"
	"unicode"
)

// ParseMoney converts free-form user input ("1.234,56", "50", "50,5")
// into a non-negative amount in cents.
//
// The input is read the way the German locale writes it: dots are
// thousands separators and are stripped, the first comma is the decimal
// separator. Anything past the second decimal digit rounds half-up.
//
// ParseMoney is total and never returns an error: empty or non-numeric
// input yields 0, and negative values clamp to 0 — payments and rates
// are never negative in this model. Callers must not rely on an error
// to detect bad input.
func ParseMoney(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	if strings.HasPrefix(s, "-") {
		// Negative input clamps to zero.
		return Money{}
	}
	s = strings.TrimPrefix(s, "+")

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}
		}
	}

	var iv int64
	const maxSafe = (1<<63 - 1) / 100
	for _, r := range intPart {
		iv = iv*10 + int64(r-'0')
		if iv > maxSafe {
			return Money{}
		}
	}

	// First two fractional digits are cents; the third rounds half-up.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	return Money{Cents: iv*100 + fracCents}
}

// Format renders the amount in de-DE display form with a trailing euro
// marker: "1.234,56 €". Negative amounts (overpaid open balances) keep
// their sign. The result is display-only and never round-trips back
// except through ParseMoney.
func (m Money) Format() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	intPart := cents / 100
	fracPart := cents % 100

	digits := []byte{}
	if intPart == 0 {
		digits = append(digits, '0')
	}
	for intPart > 0 {
		digits = append([]byte{byte('0' + intPart%10)}, digits...)
		intPart /= 10
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(d)
	}
	b.WriteByte(',')
	b.WriteByte(byte('0' + fracPart/10))
	b.WriteByte(byte('0' + fracPart%10))
	b.WriteString(" €")
	return b.String()
}
