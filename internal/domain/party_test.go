package domain_test

import (
	"testing"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
)

func TestSynthesizeParty(t *testing.T) {
	cfg := &domain.PartyJwtConfig{
		PartyID:   "org-1",
		PartyName: "Negozio Rossi",
		PartyVAT:  "01234567890",
		Roles:     []domain.PartyRole{{PartyRole: "MANAGER", RoleKey: "admin"}},
	}

	p := domain.SynthesizeParty(cfg)

	if p.PartyID != "org-1" || p.Description != "Negozio Rossi" {
		t.Errorf("unexpected identity fields: %+v", p)
	}
	if p.Status != domain.PartyStatusActive || !p.IsActive() {
		t.Errorf("synthesized party must be ACTIVE, got %s", p.Status)
	}
	if p.Source != domain.PartySourceSynthesized {
		t.Errorf("expected synthesized source, got %s", p.Source)
	}
	if p.URLLogo != domain.PlaceholderLogoURL {
		t.Errorf("expected placeholder logo, got %s", p.URLLogo)
	}

	cfg.Roles[0].RoleKey = "changed"
	if p.Roles[0].RoleKey != "admin" {
		t.Error("roles must be copied from the config")
	}
}

func TestFindParty(t *testing.T) {
	list := []domain.Party{{PartyID: "a"}, {PartyID: "b", Description: "B"}}
	if got := domain.FindParty(list, "b"); got == nil || got.Description != "B" {
		t.Errorf("expected party b, got %+v", got)
	}
	if domain.FindParty(list, "c") != nil {
		t.Error("expected nil for unknown party")
	}
}
