// Package core provides the expense domain types.
//
// This file contains the Money type and the parsing of monetary amounts from
// user input and CSV fields.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency-agnostic exact decimal amount.
type Money struct {
	decimal.Decimal
}

// ParseMoney converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. The sign is not checked here; use IsValid.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34, nil
//	ParseMoney("12,34")  -> 12.34, nil
//	ParseMoney("abc")    -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	// decimal accepts exponents; amounts typed by people never need them
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Decimal: d}, nil
}

// MustParseMoney is ParseMoney for constants in tests and examples.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// IsValid reports whether the amount is strictly positive.
func (m Money) IsValid() bool {
	return m.IsPositive()
}

// Plus returns m + o.
func (m Money) Plus(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Display returns the amount rounded to two decimals for display purposes.
// CSV output uses String, which keeps the exact value.
func (m Money) Display() string {
	return m.StringFixed(2)
}
