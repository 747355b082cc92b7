package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// single-transaction cap: 10,000,000
var maxAmount = decimal.New(1, 7)

// ParseAmount parses a money string into an exact decimal and validates it
// (positive, below the cap). Amounts travel as strings on the wire so they
// never pass through binary floating point.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount must be positive, got %s", d)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, fmt.Errorf("amount too large, got %s", d)
	}
	return d, nil
}

// ParseBalance is ParseAmount without the positivity rule: wallet balances
// may legitimately be zero or negative.
func ParseBalance(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid balance %q", s)
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Decimal{}, fmt.Errorf("balance too large, got %s", d)
	}
	return d, nil
}

// dateLayouts are the formats accepted for user-supplied dates.
var dateLayouts = []string{
	time.RFC3339,          // 2025-12-03T00:00:00+07:00
	"2006-01-02T15:04:05", // 2025-12-03T00:00:00
	"2006-01-02",          // 2025-12-03
}

// ParseDate parses a user-supplied date in one of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", s)
}
