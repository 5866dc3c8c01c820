package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrMoneyIsNotConstructed indicates that a Money value was not created
// through NewMoney or MoneyFromString.
var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("Money must be created via NewMoney or MoneyFromString")

// Money is a value object for monetary amounts: unit prices and order totals.
// It wraps a fixed-point decimal so arithmetic never loses cents the way
// binary floats do.
//
// Amounts must be non-negative. A zero amount is valid (free items exist),
// but the zero struct is not: construct Money through NewMoney or
// MoneyFromString. Money is immutable; arithmetic returns new values.
type Money struct {
	amount decimal.Decimal

	guard guard.ConstructorGuard
}

// NewMoney creates a Money value from a decimal amount.
// Returns an error for negative amounts.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s is negative", amount.String()))
	}

	return Money{
		amount: amount,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// MoneyFromString parses a decimal string such as "10.50" into a Money value.
func MoneyFromString(s string) (Money, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(amount)
}

// ZeroMoney returns a valid Money value of zero amount.
func ZeroMoney() Money {
	m, _ := NewMoney(decimal.Zero)
	return m
}

// Amount returns the underlying decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// MulInt multiplies the amount by an integer quantity.
func (m Money) MulInt(qty int) Money {
	return Money{
		amount: m.amount.Mul(decimal.NewFromInt(int64(qty))),
		guard:  guard.NewConstructorGuard(),
	}
}

// Add returns the sum of two Money values.
func (m Money) Add(other Money) Money {
	return Money{
		amount: m.amount.Add(other.amount),
		guard:  guard.NewConstructorGuard(),
	}
}

// IsEqual reports whether two Money values represent the same amount.
// "10.5" and "10.50" compare equal.
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String renders the amount with two decimal places.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// Validate returns ErrMoneyIsNotConstructed for zero-struct Money values.
func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}
