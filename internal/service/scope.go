package service

import (
	"context"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"
)

// merchantScope returns the cache namespace of the calling merchant.
// Callers without a merchant or organization claim have no namespace.
func merchantScope(ctx context.Context) (string, error) {
	c := session.ClaimsFromContext(ctx)
	if c == nil {
		return "", &domain.ErrUnauthorized{Message: "no session claims"}
	}
	if c.MerchantID != "" {
		return c.MerchantID, nil
	}
	if c.OrgID != "" {
		return c.OrgID, nil
	}
	return "", &domain.ErrUnauthorized{Message: "token carries no merchant"}
}

// sessionScope returns the cache namespace of the calling user.
func sessionScope(ctx context.Context) (string, error) {
	if key := session.Key(session.ClaimsFromContext(ctx)); key != "" {
		return key, nil
	}
	return "", &domain.ErrUnauthorized{Message: "token carries no user"}
}
