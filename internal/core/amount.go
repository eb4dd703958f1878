// Package core provides the domain model of the expense tracker.
//
// This file contains amount parsing and formatting helpers. User input is
// parsed through decimals so "12.345" rounds half-up to 12.35 instead of
// accumulating float error; amounts are stored as float64 to match the wire
// formats.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount string to a non-negative value
// rounded to two decimal places. Both dot and comma decimal separators are
// accepted. Returns ErrMalformedInput for empty, unparsable or negative input.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35 (comma separator, half-up on third decimal)
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMalformedInput
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrMalformedInput
	}
	if d.IsNegative() {
		return 0, ErrMalformedInput
	}
	v, _ := d.Round(2).Float64()
	return v, nil
}

// FormatAmount renders an amount with its currency symbol and two decimals.
func FormatAmount(amount float64, currency CurrencyCode) string {
	return currency.Symbol() + decimal.NewFromFloat(amount).StringFixed(2)
}
