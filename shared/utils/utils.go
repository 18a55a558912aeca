package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PinLength is the number of digits in a transaction PIN.
const PinLength = 4

// ValidatePin reports whether pin is exactly PinLength ASCII digits.
func ValidatePin(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	return IsDigits(pin)
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseAmount parses a decimal amount string and requires it to be positive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a number", raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero")
	}
	return amount, nil
}

// MaskID keeps the last four characters of an identifier for log output.
func MaskID(id string) string {
	if len(id) <= 4 {
		return id
	}
	return strings.Repeat("*", len(id)-4) + id[len(id)-4:]
}
