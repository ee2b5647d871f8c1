package domain_test

import (
	"math"
	"testing"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
)

func TestParseEuroAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12,50", 1250, false},
		{"12.5", 1250, false},
		{"7", 700, false},
		{"0,01", 1, false},
		{"0", 0, true},
		{"-3,00", 0, true},
		{"1,234", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"92233720368547758,07", math.MaxInt64, false},
		{"92233720368547758,08", 0, true},
		{"184467440737095516,16", 0, true},
		{"99999999999999999999", 0, true},
		{"1e30", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := domain.ParseEuroAmount(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	if got := domain.FormatCents(1250); got != "12,50 €" {
		t.Errorf("expected '12,50 €', got '%s'", got)
	}
}
