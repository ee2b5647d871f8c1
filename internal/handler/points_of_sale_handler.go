package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Points of sale: /v1/points-of-sale
// ============================================================

func listPointsOfSaleHandler(svc *service.PointsOfSaleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/points-of-sale")
		defer span.End()

		list, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func updatePointsOfSaleHandler(svc *service.PointsOfSaleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/points-of-sale")
		defer span.End()

		var body []domain.PointOfSale
		if err := decodeJSON(r, &body); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		if len(body) == 0 {
			handleServiceError(w, r, &domain.ErrValidation{Field: "pointsOfSale", Message: "is required"}, logger)
			return
		}
		for i := range body {
			if err := validateStruct(body[i]); err != nil {
				var verr *domain.ErrValidation
				if errors.As(err, &verr) {
					verr.Field = fmt.Sprintf("pointsOfSale[%d].%s", i, verr.Field)
				}
				handleServiceError(w, r, err, logger)
				return
			}
		}

		if err := svc.Update(ctx, body); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
