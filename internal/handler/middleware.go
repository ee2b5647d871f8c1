package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"

	"go.uber.org/zap"
)

type contextKey string

const loginURLKey contextKey = "loginURL"

func loginURLFromContext(ctx context.Context) string {
	v, _ := ctx.Value(loginURLKey).(string)
	return v
}

// BearerAuthMiddleware reads the portal bearer token, decodes its claims
// and stores both in the request context. With a verifier the signature
// and expiry are checked too. Rejected requests get 401 and the login URL.
func BearerAuthMiddleware(verifier *session.Verifier, loginURL string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), loginURLKey, loginURL)
			r = r.WithContext(ctx)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				handleServiceError(w, r, &domain.ErrUnauthorized{Message: "missing bearer token"}, logger)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				handleServiceError(w, r, &domain.ErrUnauthorized{Message: "invalid authorization header"}, logger)
				return
			}
			token := strings.TrimSpace(parts[1])

			var claims *domain.JWTClaims
			if verifier != nil {
				c, err := verifier.Verify(token)
				if err != nil {
					logger.Warn("auth: invalid or expired token",
						zap.String("path", r.URL.Path),
						zap.String("remote_addr", r.RemoteAddr),
						zap.Error(err),
					)
					handleServiceError(w, r, err, logger)
					return
				}
				claims = c
			} else {
				claims = session.ParseJWT(token)
			}
			if claims == nil {
				handleServiceError(w, r, &domain.ErrUnauthorized{Message: "malformed token"}, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithToken(r.Context(), token, claims)))
		})
	}
}

// RequirePartyMiddleware rejects tokens without organization claims. Such a
// session can never resolve a party, so the caller is sent to logoutURL.
// It must run after BearerAuthMiddleware.
func RequirePartyMiddleware(logoutURL string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.PartyConfigFromClaims(session.ClaimsFromContext(r.Context())) == nil {
				logger.Warn("auth: token without organization claims",
					zap.String("path", r.URL.Path),
				)
				handleServiceError(w, r, &domain.ErrSessionUnresolvable{RedirectURL: logoutURL}, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
