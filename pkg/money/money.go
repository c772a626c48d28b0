package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid money amount")

// zeroDecimal lists ISO 4217 currencies without a minor unit.
var zeroDecimal = map[string]struct{}{
	"JPY": {}, "KRW": {}, "VND": {}, "CLP": {}, "ISK": {}, "HUF": {}, "TWD": {},
}

func Exponent(currency string) int32 {
	if _, ok := zeroDecimal[strings.ToUpper(currency)]; ok {
		return 0
	}
	return 2
}

// ToMinorUnits converts 12.34 INR into 1234 paise. Amounts with more precision
// than the currency allows are rejected rather than rounded.
func ToMinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	shifted := amount.Shift(Exponent(currency))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: too many decimal places for %s", ErrInvalidAmount, currency)
	}
	if shifted.GreaterThan(decimal.NewFromInt(1 << 53)) {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return shifted.IntPart(), nil
}

func FromMinorUnits(units int64, currency string) decimal.Decimal {
	return decimal.New(units, -Exponent(currency))
}

// Format renders the amount with exactly the currency's number of decimals,
// the representation gateways expect in request bodies.
func Format(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(Exponent(currency))
}
