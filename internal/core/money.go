// Package core provides money parsing and display utilities.
//
// Amounts travel as decimals so that the value typed by the user reaches the
// backend without floating-point rounding.
package core

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// amountFormatter renders "1,234.56€": two fraction digits, comma thousands,
// euro sign after the amount.
var amountFormatter = money.NewFormatter(2, ".", ",", "€", "1$")

// MaxAmount is the largest absolute amount accepted from users. Its value in
// cents fits an int64 with room to spare.
var MaxAmount = decimal.New(1, 15)

// ParseAmount converts a user-typed amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional sign. Returns ErrInvalidAmount for empty or malformed input and
// for amounts beyond MaxAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> -5, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount returns the display form of an amount, rounded half away from
// zero to cents. Amounts beyond MaxAmount, which only the backend can send,
// are shown without thousands separators.
func FormatAmount(d decimal.Decimal) string {
	if d.Abs().GreaterThan(MaxAmount) {
		return d.StringFixed(2) + "€"
	}
	cents := d.Round(2).Shift(2).IntPart()
	return amountFormatter.Format(cents)
}
