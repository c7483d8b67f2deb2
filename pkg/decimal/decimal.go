package decimal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a currency amount carried at full precision internally.
// Engines accumulate in Money and convert to float64 only when a result
// crosses into JSON or a report sheet.
type Money struct {
	value decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{value: decimal.Zero}

// NewMoney wraps a float64 input value (facility financials arrive this way).
func NewMoney(f float64) Money {
	return Money{value: decimal.NewFromFloat(f)}
}

// NewMoneyFromString parses a decimal literal, used for config-table constants.
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount: %w", err)
	}
	return Money{value: d}, nil
}

func (m Money) Add(other Money) Money {
	return Money{value: m.value.Add(other.value)}
}

func (m Money) Sub(other Money) Money {
	return Money{value: m.value.Sub(other.value)}
}

func (m Money) Neg() Money {
	return Money{value: m.value.Neg()}
}

// Mul scales by a dimensionless factor (a rate, a fraction, a multiplier).
func (m Money) Mul(factor float64) Money {
	return Money{value: m.value.Mul(decimal.NewFromFloat(factor))}
}

func (m Money) Div(divisor float64) Money {
	if divisor == 0 {
		return Zero
	}
	return Money{value: m.value.Div(decimal.NewFromFloat(divisor))}
}

func (m Money) Abs() Money {
	return Money{value: m.value.Abs()}
}

func (m Money) IsNegative() bool {
	return m.value.IsNegative()
}

func (m Money) Cmp(other Money) int {
	return m.value.Cmp(other.value)
}

// Float64 converts at the serialisation boundary. Loses nothing material:
// callers round to whole currency units when they present results.
func (m Money) Float64() float64 {
	return m.value.InexactFloat64()
}

func (m Money) String() string {
	return m.value.StringFixed(2)
}

// Sum accumulates a series of Money values at full precision.
func Sum(values ...Money) Money {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
