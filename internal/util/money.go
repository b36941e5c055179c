package util

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Largest amount accepted at the boundary.
var maxAmount = decimal.NewFromInt(10_000_000)

// ParseAmount parses a boundary amount string into a decimal.
// The amount must be positive and below the sanity ceiling.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("amount too large, got %s", d)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("amount has more than 2 decimal places, got %s", d)
	}
	return d, nil
}

// FormatAmount renders a decimal with exactly 2 decimal places for the API
// boundary. Internal computation always stays in decimal form.
func FormatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
