package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an arbitrary-precision decimal amount. The zero value is zero money.
type Money struct {
	value decimal.Decimal
}

// NewMoney parses a decimal string into Money.
func NewMoney(raw string) (Money, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %v", ErrInvalidMoney, err)
	}
	return Money{value: parsed}, nil
}

// NewMoneyFromInt builds Money from whole currency units.
func NewMoneyFromInt(units int64) Money {
	return Money{value: decimal.NewFromInt(units)}
}

// ZeroMoney returns the zero amount.
func ZeroMoney() Money {
	return Money{value: decimal.Zero}
}

// Add returns the sum of the two amounts.
func (amount Money) Add(other Money) Money {
	return Money{value: amount.value.Add(other.value)}
}

// Sub returns the difference of the two amounts.
func (amount Money) Sub(other Money) Money {
	return Money{value: amount.value.Sub(other.value)}
}

// Abs returns the absolute value.
func (amount Money) Abs() Money {
	return Money{value: amount.value.Abs()}
}

// Cmp compares two amounts: -1 if less, 0 if equal, +1 if greater.
func (amount Money) Cmp(other Money) int {
	return amount.value.Cmp(other.value)
}

// Equal reports whether the two amounts represent the same value.
func (amount Money) Equal(other Money) bool {
	return amount.value.Equal(other.value)
}

// IsZero reports whether the amount is exactly zero.
func (amount Money) IsZero() bool {
	return amount.value.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (amount Money) IsNegative() bool {
	return amount.value.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (amount Money) IsPositive() bool {
	return amount.value.IsPositive()
}

// TruncateCents truncates the amount toward zero at cent granularity.
func (amount Money) TruncateCents() Money {
	return Money{value: amount.value.Truncate(centScale)}
}

// String renders the amount as a plain decimal string.
func (amount Money) String() string {
	return amount.value.String()
}

// Decimal exposes the underlying decimal value for storage adapters.
func (amount Money) Decimal() decimal.Decimal {
	return amount.value
}

// MoneyFromDecimal wraps a raw decimal loaded from storage.
func MoneyFromDecimal(value decimal.Decimal) Money {
	return Money{value: value}
}

// percentOf computes floor(numerator/denominator*100) with the division
// rounded half-even at cent scale first, clamped to [0, 100]. A zero or
// negative denominator yields 0.
func percentOf(numerator Money, denominator Money) int {
	if !denominator.IsPositive() {
		return 0
	}
	ratio := numerator.value.Mul(decimal.NewFromInt(100)).Div(denominator.value).RoundBank(centScale)
	percent := ratio.IntPart()
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return int(percent)
}
