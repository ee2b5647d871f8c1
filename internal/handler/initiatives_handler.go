package handler

import (
	"net/http"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Initiatives: /v1/initiatives
// ============================================================

type initiativesQuery struct {
	Search  string `json:"search" validate:"max=100"`
	OrderBy string `json:"orderBy" validate:"omitempty,oneof=initiativeName organizationName status startDate endDate enabled spendingPeriod"`
	Order   string `json:"order" validate:"omitempty,oneof=asc desc"`
}

func listInitiativesHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/initiatives")
		defer span.End()

		q := initiativesQuery{
			Search:  r.URL.Query().Get("search"),
			OrderBy: r.URL.Query().Get("orderBy"),
			Order:   r.URL.Query().Get("order"),
		}
		if err := validateStruct(q); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}

		list, err := svc.ListInitiatives(ctx, q.Search, q.OrderBy, domain.SortOrder(q.Order))
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func overviewHandler(svc *service.MerchantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/initiatives/{initiativeId}/overview")
		defer span.End()

		initiativeID := chi.URLParam(r, "initiativeId")
		span.SetAttributes(attribute.String("initiative.id", initiativeID))

		overview, err := svc.GetOverview(ctx, initiativeID)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, overview)
	}
}
