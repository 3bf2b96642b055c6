package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable arbitrary-precision amount.
type Money struct {
	amount decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d}
}

// MoneyOf creates Money from a whole number.
func MoneyOf(value int64) Money {
	return Money{amount: decimal.NewFromInt(value)}
}

// ZeroMoney returns a zero amount.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// ParseMoney parses a decimal literal such as "100.25".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a decimal", ErrInvalidAmount, s)
	}
	return Money{amount: d}, nil
}

// Plus returns m + other.
func (m Money) Plus(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Minus returns m - other.
func (m Money) Minus(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// IsNonNegative reports whether m >= 0.
func (m Money) IsNonNegative() bool {
	return !m.amount.IsNegative()
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Equal compares by decimal value, so 1.0 equals 1.00.
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Decimal returns the underlying value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return m.amount.String()
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.amount.MarshalJSON()
}

// UnmarshalJSON accepts both quoted and bare decimals.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	m.amount = d
	return nil
}
