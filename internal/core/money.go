// Package core provides money parsing and handling utilities.
//
// This file contains the parsing rules for monetary amounts coming from
// users or from the wire. All amounts are decimals with two fraction digits.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the number of fraction digits kept for an amount.
	AmountScale = 2
	// maxAmountDigits mirrors the storage column precision (10 digits, 2 decimals).
	maxAmountDigits = 10
)

var (
	// MinAmount is the smallest positive amount accepted.
	MinAmount = decimal.New(1, -AmountScale)
	// MaxAmount is the largest amount that fits the storage precision.
	MaxAmount = decimal.New(1, maxAmountDigits-AmountScale).Sub(MinAmount)
)

// ParseAmount converts a decimal string to an amount with two fraction digits.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero on the third decimal place. Signs, exponents, empty or
// non-numeric input are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(AmountScale)
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount checks that d is within the accepted range.
func ValidateAmount(d decimal.Decimal) error {
	if d.LessThan(MinAmount) || d.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// SignedAmount returns the amount with the sign implied by the transaction type.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}
