package session_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return tok
}

func merchantClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"uid":            "user-1",
		"name":           "Mario",
		"family_name":    "Rossi",
		"email":          "mario.rossi@example.it",
		"org_id":         "org-1",
		"org_name":       "Ferramenta Rossi",
		"org_vat":        "01234567890",
		"org_party_role": "MERCHANT",
		"org_role":       "admin",
		"merchant_id":    "merchant-1",
	}
}
