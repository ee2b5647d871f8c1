package session

import (
	"context"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
)

type contextKey string

const (
	tokenKey  contextKey = "bearerToken"
	claimsKey contextKey = "jwtClaims"
)

// WithToken stores the caller's bearer token and its claims in ctx.
func WithToken(ctx context.Context, token string, claims *domain.JWTClaims) context.Context {
	ctx = context.WithValue(ctx, tokenKey, token)
	return context.WithValue(ctx, claimsKey, claims)
}

// TokenFromContext returns the bearer token to forward to backends.
func TokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}

// ClaimsFromContext returns the claims decoded by the auth middleware.
func ClaimsFromContext(ctx context.Context) *domain.JWTClaims {
	v, _ := ctx.Value(claimsKey).(*domain.JWTClaims)
	return v
}

// Key returns the session key of claims: the user id, or the org id when
// the token carries no user id.
func Key(c *domain.JWTClaims) string {
	if c == nil {
		return ""
	}
	if c.UID != "" {
		return c.UID
	}
	return c.OrgID
}
