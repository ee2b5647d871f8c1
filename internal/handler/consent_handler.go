package handler

import (
	"net/http"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Consent gate: /v1/consent
// ============================================================

func getConsentHandler(svc *service.ConsentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/consent")
		defer span.End()

		state, err := svc.State(ctx)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func acceptConsentHandler(svc *service.ConsentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/consent")
		defer span.End()

		state, err := svc.Accept(ctx)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}
