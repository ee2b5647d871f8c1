package domain

import (
	"regexp"
	"strings"
)

// ============================================================
// Validation predicates
// ============================================================

var (
	taxCodePattern      = regexp.MustCompile(`^[A-Z]{6}[0-9LMNPQRSTUV]{2}[ABCDEHLMPRST][0-9LMNPQRSTUV]{2}[A-Z][0-9LMNPQRSTUV]{3}[A-Z]$`)
	discountCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// DiscountCodeLength is the length of a transaction code.
const DiscountCodeLength = 8

// IsValidTaxCode reports whether s is a well formed Italian personal fiscal code.
func IsValidTaxCode(s string) bool {
	return taxCodePattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// IsPositiveAmount reports whether an amount in cents is strictly positive.
func IsPositiveAmount(cents int64) bool {
	return cents > 0
}

// IsValidDiscountCode reports whether s looks like a transaction code.
func IsValidDiscountCode(s string) bool {
	return len(s) == DiscountCodeLength && discountCodePattern.MatchString(s)
}
