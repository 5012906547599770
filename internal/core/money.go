// Package core holds the domain model shared by every engine: ledger
// entries, budgets, goals, notifications and the money/date primitives they
// are built from.
//
// Money is a fixed-precision decimal. Business arithmetic never touches raw
// textual input or floats; amounts are parsed once at ingestion and carried
// as decimals from there on.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount with currency-minor-unit precision.
type Money struct {
	decimal.Decimal
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{decimal.Zero}
}

// MoneyFromCents builds an amount from minor units, e.g. 1234 -> 12.34.
func MoneyFromCents(cents int64) Money {
	return Money{decimal.New(cents, -2)}
}

// MoneyFromFloat converts a float for places where no textual source exists,
// such as seed data. Prefer ParseMoney at ingestion boundaries.
func MoneyFromFloat(v float64) Money {
	return Money{decimal.NewFromFloat(v)}
}

// ParseMoney parses a positive decimal amount. Both dot and comma decimal
// separators are accepted; signs are not. Precision finer than the minor
// unit is rejected so every backend stores the exact same value.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,34")  -> 12.34
//	ParseMoney("-5")     -> ErrInvalidAmount
//	ParseMoney("12.345") -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero(), ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Zero(), ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero(), ErrInvalidAmount
	}
	if !d.IsPositive() {
		return Zero(), ErrInvalidAmount
	}
	if !d.Equal(d.Round(2)) {
		return Zero(), ErrInvalidAmount
	}
	return Money{d}, nil
}

// Validate rejects zero and negative amounts, and amounts finer than the
// minor unit. Sub-cent values would round-trip differently through a
// cent-based store than through a decimal-based one.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	if !m.Decimal.Equal(m.Decimal.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{m.Decimal.Sub(o.Decimal)}
}

// Min returns the smaller of m and o.
func (m Money) Min(o Money) Money {
	if m.GreaterThan(o.Decimal) {
		return o
	}
	return m
}

// Cents returns the amount in minor units with half-up rounding on the
// third decimal.
func (m Money) Cents() int64 {
	return m.Shift(2).Round(0).IntPart()
}

// Float returns the amount as a float64 for display-only math such as
// percentage ratios. Never feed the result back into money arithmetic.
func (m Money) Float() float64 {
	return m.InexactFloat64()
}

// GreaterThanM compares two amounts.
func (m Money) GreaterThanM(o Money) bool {
	return m.GreaterThan(o.Decimal)
}

// EqualM reports value equality regardless of exponent.
func (m Money) EqualM(o Money) bool {
	return m.Equal(o.Decimal)
}

// MarshalJSON emits a plain JSON number, matching the wire contract.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts both quoted and unquoted numbers.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		m.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

// Round1 rounds to one decimal place, half away from zero. Used for every
// display percentage in the wire contract.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RawPercent returns part/whole as an uncapped percentage. A non-positive
// whole yields 0 rather than an error; division by zero is not a failure
// mode anywhere in the engine.
func RawPercent(part, whole Money) float64 {
	if !whole.IsPositive() {
		return 0
	}
	r, _ := part.Decimal.Div(whole.Decimal).Mul(decimal.NewFromInt(100)).Float64()
	return r
}

// CappedPercent is RawPercent rounded to one decimal and capped at 100.
func CappedPercent(part, whole Money) float64 {
	return math.Min(100, Round1(RawPercent(part, whole)))
}
