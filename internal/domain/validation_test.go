package domain_test

import (
	"testing"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
)

func TestIsValidTaxCode(t *testing.T) {
	valid := []string{"RSSMRA80A01H501U", "rssmra80a01h501u", " MRTMTT25D09F205Z "}
	invalid := []string{"", "RSSMRA80A01H501", "12345678901", "RSSMRA80Z01H501U"}

	for _, s := range valid {
		if !domain.IsValidTaxCode(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if domain.IsValidTaxCode(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestIsValidDiscountCode(t *testing.T) {
	if !domain.IsValidDiscountCode("qwertyui") {
		t.Error("expected 8 alphanumeric chars to be valid")
	}
	if domain.IsValidDiscountCode("qwerty") || domain.IsValidDiscountCode("qwerty-i") {
		t.Error("expected short or non alphanumeric codes to be invalid")
	}
}

func TestIsPositiveAmount(t *testing.T) {
	if domain.IsPositiveAmount(0) || domain.IsPositiveAmount(-1) {
		t.Error("zero and negative amounts are not positive")
	}
	if !domain.IsPositiveAmount(1) {
		t.Error("one cent is positive")
	}
}
