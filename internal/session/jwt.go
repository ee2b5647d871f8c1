// Package session reads the identity token of the portal user and resolves
// the organization (party) the session acts for.
package session

import (
	"fmt"
	"strings"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the wire shape of the identity token payload.
type tokenClaims struct {
	Organization *struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		FiscalCode string `json:"fiscal_code"`
		PartyRole  string `json:"party_role,omitempty"`
		Roles      []struct {
			PartyRole string `json:"partyRole"`
			Role      string `json:"role"`
		} `json:"roles"`
	} `json:"organization,omitempty"`
	OrgID        string `json:"org_id"`
	OrgName      string `json:"org_name"`
	OrgVAT       string `json:"org_vat"`
	OrgPartyRole string `json:"org_party_role"`
	OrgRole      string `json:"org_role"`
	UID          string `json:"uid"`
	Name         string `json:"name"`
	FamilyName   string `json:"family_name"`
	Email        string `json:"email"`
	MerchantID   string `json:"merchant_id"`
	jwt.RegisteredClaims
}

func (c *tokenClaims) toDomain() *domain.JWTClaims {
	out := &domain.JWTClaims{
		OrgID:        c.OrgID,
		OrgName:      c.OrgName,
		OrgVAT:       c.OrgVAT,
		OrgPartyRole: c.OrgPartyRole,
		OrgRole:      c.OrgRole,
		UID:          c.UID,
		Name:         c.Name,
		Surname:      c.FamilyName,
		Email:        c.Email,
		MerchantID:   c.MerchantID,
	}
	// selfcare tokens nest the organization; flat claims win when both are present.
	if org := c.Organization; org != nil {
		if out.OrgID == "" {
			out.OrgID = org.ID
		}
		if out.OrgName == "" {
			out.OrgName = org.Name
		}
		if out.OrgVAT == "" {
			out.OrgVAT = org.FiscalCode
		}
		if out.OrgPartyRole == "" && len(org.Roles) > 0 {
			out.OrgPartyRole = org.Roles[0].PartyRole
		}
		if out.OrgRole == "" && len(org.Roles) > 0 {
			out.OrgRole = org.Roles[0].Role
		}
	}
	if out.UID == "" {
		out.UID = c.Subject
	}
	return out
}

// ParseJWT decodes the claims of token without verifying its signature.
// It returns nil for an empty or malformed token.
func ParseJWT(token string) *domain.JWTClaims {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims.toDomain()
}

// PartyConfigFromClaims derives the party view of the claims. It is nil
// unless org id, org party role and org role are all present.
func PartyConfigFromClaims(c *domain.JWTClaims) *domain.PartyJwtConfig {
	if c == nil || c.OrgID == "" || c.OrgPartyRole == "" || c.OrgRole == "" {
		return nil
	}
	return &domain.PartyJwtConfig{
		PartyID:   c.OrgID,
		PartyName: c.OrgName,
		PartyVAT:  c.OrgVAT,
		Roles:     []domain.PartyRole{{PartyRole: c.OrgPartyRole, RoleKey: c.OrgRole}},
	}
}

// Verifier checks HMAC signed tokens before their claims are trusted.
type Verifier struct {
	secret []byte
}

// NewVerifier returns nil when secret is empty: tokens are then only decoded.
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

// Verify validates signature and expiry and returns the claims.
func (v *Verifier) Verify(token string) (*domain.JWTClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	return claims.toDomain(), nil
}
