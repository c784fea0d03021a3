package amount

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// InvalidAmountError is returned for amounts that are not non-negative decimals
type InvalidAmountError struct {
	Value  string
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Value, e.Reason)
}

// InvalidSlippageError is returned when a slippage tolerance falls outside [0, 100)
type InvalidSlippageError struct {
	Value decimal.Decimal
}

func (e *InvalidSlippageError) Error() string {
	return fmt.Sprintf("invalid slippage %s%%: must be at least 0 and below 100", e.Value.String())
}

// ToBaseUnits converts a human-denominated amount into the token's smallest unit.
// The result is truncated toward zero, never rounded up.
func ToBaseUnits(human string, decimals uint8) (string, error) {
	d, err := parse(human)
	if err != nil {
		return "", err
	}
	return d.Shift(int32(decimals)).Truncate(0).String(), nil
}

// FromBaseUnits converts a base-unit integer back into human units
func FromBaseUnits(base string, decimals uint8) (string, error) {
	d, err := parseInteger(base)
	if err != nil {
		return "", err
	}
	return d.Shift(-int32(decimals)).String(), nil
}

// MinOutput applies a slippage tolerance (in percent) to a quoted output amount.
// The floor is quoted * (100 - slippage) / 100 truncated toward zero.
func MinOutput(quoted string, slippage decimal.Decimal) (string, error) {
	if err := ValidateSlippage(slippage); err != nil {
		return "", err
	}

	q, err := parseInteger(quoted)
	if err != nil {
		return "", err
	}

	return q.Mul(hundred.Sub(slippage)).Shift(-2).Truncate(0).String(), nil
}

// ValidateSlippage checks a tolerance is in [0, 100). 100 would zero the floor.
func ValidateSlippage(slippage decimal.Decimal) error {
	if slippage.IsNegative() || slippage.GreaterThanOrEqual(hundred) {
		return &InvalidSlippageError{Value: slippage}
	}
	return nil
}

func parse(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, &InvalidAmountError{Value: value, Reason: "empty"}
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &InvalidAmountError{Value: value, Reason: "not a decimal number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &InvalidAmountError{Value: value, Reason: "negative"}
	}

	return d, nil
}

func parseInteger(value string) (decimal.Decimal, error) {
	d, err := parse(value)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsInteger() {
		return decimal.Zero, &InvalidAmountError{Value: value, Reason: "base units must be an integer"}
	}
	return d, nil
}
