package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// PartyClient reads organization details from the party registry.
type PartyClient struct {
	backend *Backend
}

// NewPartyClient creates a PartyClient.
func NewPartyClient(backend *Backend) *PartyClient {
	return &PartyClient{backend: backend}
}

// FetchPartyDetails looks partyID up in known first, then asks the
// registry. It returns nil, nil when the registry has no such party.
func (c *PartyClient) FetchPartyDetails(ctx context.Context, partyID string, known []domain.Party) (*domain.Party, error) {
	ctx, span := tracer.Start(ctx, "PartyClient.FetchPartyDetails")
	defer span.End()
	span.SetAttributes(attribute.String("party.id", partyID))

	if p := domain.FindParty(known, partyID); p != nil {
		span.SetAttributes(attribute.Bool("party.known", true))
		return p, nil
	}

	var p domain.Party
	err := c.backend.do(ctx, http.MethodGet, "/institutions/"+url.PathEscape(partyID), nil, &p)
	var nf *domain.ErrNotFound
	if errors.As(err, &nf) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListParties returns the organizations the caller belongs to.
func (c *PartyClient) ListParties(ctx context.Context) ([]domain.Party, error) {
	ctx, span := tracer.Start(ctx, "PartyClient.ListParties")
	defer span.End()

	var out []domain.Party
	if err := c.backend.do(ctx, http.MethodGet, "/institutions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
