package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var italianPrinter = message.NewPrinter(language.Italian)

// CentsToEuro converts an amount in cents to a decimal euro value.
func CentsToEuro(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCents renders cents as an it-IT euro amount, e.g. "12,50 €".
func FormatCents(cents int64) string {
	f, _ := CentsToEuro(cents).Float64()
	return italianPrinter.Sprintf("%.2f €", f)
}

// ParseEuroAmount parses a user supplied euro amount ("12,50" or "12.50")
// into cents. At most two decimal digits are accepted.
func ParseEuroAmount(s string) (int64, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if raw == "" {
		return 0, &ErrValidation{Field: "amount", Message: "required"}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, &ErrValidation{Field: "amount", Message: "must be a number"}
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, &ErrValidation{Field: "amount", Message: "at most two decimal digits"}
	}
	shifted := d.Shift(2)
	if !shifted.BigInt().IsInt64() {
		return 0, &ErrValidation{Field: "amount", Message: "too large"}
	}
	cents := shifted.IntPart()
	if !IsPositiveAmount(cents) {
		return 0, &ErrValidation{Field: "amount", Message: "must be positive"}
	}
	return cents, nil
}
