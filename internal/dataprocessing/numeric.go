package dataprocessing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errEmptyValue = errors.New("empty value")

// ParseDecimal parses a numeric cell. Decimal commas are accepted and
// surrounding whitespace is ignored.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, errEmptyValue
	}
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// applyPriceSign negates qty when price is negative. A missing price leaves
// the quantity untouched.
func applyPriceSign(qty decimal.Decimal, price *decimal.Decimal) decimal.Decimal {
	if price != nil && price.IsNegative() {
		return qty.Neg()
	}
	return qty
}
