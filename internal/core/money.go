// Package core provides money parsing and handling utilities.
//
// Amounts are fixed-point decimals (shopspring/decimal) in the record's
// operating currency. Storage layers that need integers use minor units
// (fils for AED) through ToMinor and FromMinor.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the operating currency when a record does not carry one.
const DefaultCurrency = "AED"

// MinorUnitExponent is the number of decimal places of the operating currency.
const MinorUnitExponent = 2

// MoneyEpsilon is the tolerance used when comparing derived amounts.
var MoneyEpsilon = decimal.New(1, -MinorUnitExponent)

// Hundred is used for percentage math.
var Hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to an amount rounded to minor units.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero on the third decimal place. Negative and zero values
// are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = RoundMoney(d)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// RoundMoney rounds to minor units, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitExponent)
}

// ToMinor converts an amount to integer minor units (1.25 AED -> 125).
func ToMinor(d decimal.Decimal) int64 {
	return d.Shift(MinorUnitExponent).Round(0).IntPart()
}

// FromMinor converts integer minor units back to an amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -MinorUnitExponent)
}

// ApproxEqual reports whether two amounts differ by at most MoneyEpsilon.
func ApproxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(MoneyEpsilon)
}

// NonNegative clamps negative amounts to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
