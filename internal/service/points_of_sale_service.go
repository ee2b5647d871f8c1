package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PointsOfSaleService reads and replaces the merchant's points of sale.
type PointsOfSaleService struct {
	api    port.PointsOfSaleAPI
	logger *zap.Logger
}

// NewPointsOfSaleService creates the service.
func NewPointsOfSaleService(api port.PointsOfSaleAPI, logger *zap.Logger) *PointsOfSaleService {
	return &PointsOfSaleService{api: api, logger: logger}
}

// List returns the merchant's points of sale.
func (s *PointsOfSaleService) List(ctx context.Context) ([]domain.PointOfSale, error) {
	ctx, span := tracer.Start(ctx, "PointsOfSaleService.List")
	defer span.End()

	list, err := s.api.GetPointsOfSale(ctx)
	if err != nil {
		return nil, fmt.Errorf("points of sale fetch: %w", err)
	}
	if list == nil {
		list = []domain.PointOfSale{}
	}
	return list, nil
}

// Update replaces the merchant's points of sale. Bodies are validated by
// the handler before this is called.
func (s *PointsOfSaleService) Update(ctx context.Context, pos []domain.PointOfSale) error {
	ctx, span := tracer.Start(ctx, "PointsOfSaleService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int("pos.count", len(pos)))

	if len(pos) == 0 {
		return &domain.ErrValidation{Field: "pointsOfSale", Message: "at least one point of sale is required"}
	}
	if err := s.api.UpdatePointsOfSale(ctx, pos); err != nil {
		return fmt.Errorf("points of sale update: %w", err)
	}
	s.logger.Info("points of sale updated", zap.Int("count", len(pos)))
	return nil
}
