package handler

import (
	"net/http"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/service"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Session: /v1/session
// ============================================================

func selectedPartyHandler(resolver *session.PartyResolver, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/session/party")
		defer span.End()

		party, err := resolver.ResolveSelectedParty(ctx, session.TokenFromContext(ctx))
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("party.id", party.PartyID),
			attribute.String("party.source", string(party.Source)),
		)
		writeJSON(w, http.StatusOK, party)
	}
}

func sessionStatusHandler(resolver *session.PartyResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loading := resolver.PartyLoading(session.TokenFromContext(r.Context()))
		writeJSON(w, http.StatusOK, map[string]bool{"partyLoading": loading})
	}
}

func logoutHandler(resolver *session.PartyResolver, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/session/logout")
		defer span.End()

		redirect, err := resolver.Logout(ctx, session.TokenFromContext(ctx))
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"redirectUrl": redirect})
	}
}

func listPartiesHandler(dir *service.PartyDirectory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/session/parties")
		defer span.End()

		parties, err := dir.ListParties(ctx)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, parties)
	}
}
