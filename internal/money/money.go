package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// ParseAmount parses a user-supplied monetary amount. At most two decimal
// places are accepted on input; stored values keep full precision.
func ParseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, ErrTooManyDecimals
	}
	return amount, nil
}

// ParsePositive parses an amount and rejects zero or negative values.
func ParsePositive(input string) (decimal.Decimal, error) {
	amount, err := ParseAmount(input)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// Round2 rounds to two decimal places for presentation. Internal balance
// arithmetic stays unrounded so conversion error does not compound.
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// Format renders an amount rounded to two decimal places.
func Format(value decimal.Decimal) string {
	return value.StringFixed(2)
}
