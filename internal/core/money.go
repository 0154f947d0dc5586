// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and their decimal JSON representation.
package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents. Arithmetic stays in integers; the decimal
// form only appears at the JSON and display boundaries.
type Money struct {
	Cents int64
}

// MaxCents bounds a single price or deposit (one hundred billion).
// Sums of bounded amounts stay far from int64 overflow.
const MaxCents int64 = 1e13

// NewMoney builds Money from a decimal value, rounding half away from zero.
// Values outside ±MaxCents are clamped.
func NewMoney(v float64) Money {
	c := math.Round(v * 100)
	switch {
	case math.IsNaN(c):
		return Money{}
	case c > float64(MaxCents):
		return Money{Cents: MaxCents}
	case c < -float64(MaxCents):
		return Money{Cents: -MaxCents}
	}
	return Money{Cents: int64(c)}
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("0") -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParsePrice is ParseDecimalToCents without the positivity requirement:
// a product may legitimately cost nothing.
func ParsePrice(s string) (Money, error) {
	cents, err := parseDecimal(s)
	if err != nil {
		return Money{}, ErrInvalidPrice
	}
	return Money{Cents: cents}, nil
}

func parseDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if iv > MaxCents/100 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
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
	cents := iv*100 + fracCents
	if cents > MaxCents {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Add returns m+o, saturating at the int64 limits.
func (m Money) Add(o Money) Money {
	sum, ok := m.CheckedAdd(o)
	if !ok {
		if o.Cents > 0 {
			return Money{Cents: math.MaxInt64}
		}
		return Money{Cents: math.MinInt64}
	}
	return sum
}

// CheckedAdd returns m+o and false when the sum overflows int64.
func (m Money) CheckedAdd(o Money) (Money, bool) {
	sum := m.Cents + o.Cents
	if (o.Cents > 0 && sum < m.Cents) || (o.Cents < 0 && sum > m.Cents) {
		return Money{}, false
	}
	return Money{Cents: sum}, true
}

// Sub returns m-o.
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Times multiplies by a quantity, saturating at the int64 limits.
func (m Money) Times(n int) Money {
	if m.Cents == 0 || n == 0 {
		return Money{}
	}
	p := m.Cents * int64(n)
	if p/int64(n) != m.Cents {
		if (m.Cents > 0) == (n > 0) {
			return Money{Cents: math.MaxInt64}
		}
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: p}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// Float returns the decimal value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Validate requires a strictly positive amount no larger than MaxCents,
// as for deposits.
func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

// String renders the plain decimal form, e.g. "12.5".
func (m Money) String() string {
	return strconv.FormatFloat(m.Float(), 'f', -1, 64)
}

// MarshalJSON writes the amount as a JSON number, matching the stored document layout.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a decimal string ("12,50").
// Negative amounts and amounts above MaxCents are rejected.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.Cents = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParsePrice(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return ErrInvalidPrice
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) || math.Round(f*100) > float64(MaxCents) {
		return ErrInvalidPrice
	}
	*m = NewMoney(f)
	return nil
}
