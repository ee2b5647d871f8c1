// Package domain defines the core entities of the merchant portal BFF.
// These models are independent of the backend services and represent the
// canonical data structures used throughout the BFA.
package domain

// ============================================================
// Session / JWT
// ============================================================

// JWTClaims is the subset of the identity token payload the portal reads.
// It is re-derived from the token on every read and never mutated.
type JWTClaims struct {
	OrgID        string `json:"org_id"`
	OrgName      string `json:"org_name"`
	OrgVAT       string `json:"org_vat"`
	OrgPartyRole string `json:"org_party_role"`
	OrgRole      string `json:"org_role"`
	UID          string `json:"uid"`
	Name         string `json:"name"`
	Surname      string `json:"family_name"`
	Email        string `json:"email"`
	MerchantID   string `json:"merchant_id,omitempty"`
}

// PartyRole pairs the institutional role of the party with the user's role key.
type PartyRole struct {
	PartyRole string `json:"partyRole"`
	RoleKey   string `json:"roleKey"`
}

// PartyJwtConfig is the party view derived from JWTClaims.
type PartyJwtConfig struct {
	PartyID   string      `json:"partyId"`
	PartyName string      `json:"partyName"`
	PartyVAT  string      `json:"partyVat"`
	Roles     []PartyRole `json:"roles"`
}

// ============================================================
// Party
// ============================================================

// PartyStatusActive is the only status accepted for the session party.
const PartyStatusActive = "ACTIVE"

// PartySource tells where a resolved party came from.
type PartySource string

const (
	// PartySourceAuthoritative marks a party returned by the party backend.
	PartySourceAuthoritative PartySource = "authoritative"
	// PartySourceSynthesized marks a placeholder built from the JWT claims
	// because the backend has no record of the organization yet.
	PartySourceSynthesized PartySource = "synthesized"
)

// PlaceholderLogoURL is used as urlLogo for synthesized parties.
const PlaceholderLogoURL = "https://selfcare.pagopa.it/assets/default-institution-logo.png"

// Party is the merchant's organization.
type Party struct {
	PartyID          string      `json:"partyId"`
	ExternalID       string      `json:"externalId"`
	OriginID         string      `json:"originId"`
	Origin           string      `json:"origin"`
	Description      string      `json:"description"`
	DigitalAddress   string      `json:"digitalAddress"`
	Status           string      `json:"status"`
	Roles            []PartyRole `json:"roles"`
	FiscalCode       string      `json:"fiscalCode"`
	RegisteredOffice string      `json:"registeredOffice"`
	Typology         string      `json:"typology"`
	URLLogo          string      `json:"urlLogo,omitempty"`
	Source           PartySource `json:"source"`
}

// IsActive reports whether the party can be used as session party.
func (p *Party) IsActive() bool {
	return p != nil && p.Status == PartyStatusActive
}

// SynthesizeParty builds the fallback party used when the backend does not
// know the organization in the token yet.
func SynthesizeParty(cfg *PartyJwtConfig) *Party {
	roles := make([]PartyRole, len(cfg.Roles))
	copy(roles, cfg.Roles)
	return &Party{
		PartyID:          cfg.PartyID,
		ExternalID:       cfg.PartyVAT,
		OriginID:         cfg.PartyVAT,
		Origin:           "SELC",
		Description:      cfg.PartyName,
		DigitalAddress:   "",
		Status:           PartyStatusActive,
		Roles:            roles,
		FiscalCode:       cfg.PartyVAT,
		RegisteredOffice: "",
		Typology:         "",
		URLLogo:          PlaceholderLogoURL,
		Source:           PartySourceSynthesized,
	}
}

// FindParty returns the party with the given id from list, or nil.
func FindParty(list []Party, partyID string) *Party {
	for i := range list {
		if list[i].PartyID == partyID {
			p := list[i]
			return &p
		}
	}
	return nil
}
