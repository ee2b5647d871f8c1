// Package service holds the portal use cases: initiatives and overview,
// the transactions table, the consent gate and points of sale.
package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/merchant")

// MerchantService serves the initiatives list and the initiative overview.
type MerchantService struct {
	initiatives port.InitiativesFetcher
	overview    port.OverviewFetcher
	cache       port.Cache[any]
	alerts      port.AlertDispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewMerchantService creates the merchant service with all dependencies injected.
func NewMerchantService(
	initiatives port.InitiativesFetcher,
	overview port.OverviewFetcher,
	cache port.Cache[any],
	alerts port.AlertDispatcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *MerchantService {
	return &MerchantService{
		initiatives: initiatives,
		overview:    overview,
		cache:       cache,
		alerts:      alerts,
		metrics:     metrics,
		logger:      logger,
	}
}

// ListInitiatives returns the visible initiatives of the merchant whose name
// contains search, sorted by orderBy. The unfiltered list is cached so every
// keystroke filters the full list without a backend call.
func (s *MerchantService) ListInitiatives(ctx context.Context, search, orderBy string, order domain.SortOrder) ([]domain.Initiative, error) {
	ctx, span := tracer.Start(ctx, "MerchantService.ListInitiatives")
	defer span.End()
	span.SetAttributes(
		attribute.String("search", search),
		attribute.String("order_by", orderBy),
	)

	all, err := s.visibleInitiatives(ctx)
	if err != nil {
		return nil, err
	}
	return domain.SortInitiatives(domain.FilterInitiatives(all, search), orderBy, order)
}

func (s *MerchantService) visibleInitiatives(ctx context.Context) ([]domain.Initiative, error) {
	scope, err := merchantScope(ctx)
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf("initiatives:%s", scope)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if list, ok := cached.([]domain.Initiative); ok {
			s.metrics.IncrCacheHit("initiatives")
			return list, nil
		}
	}
	s.metrics.IncrCacheMiss("initiatives")

	list, err := s.initiatives.GetMerchantInitiatives(ctx)
	if err != nil {
		s.dispatch(ctx, "initiatives.list", err)
		return nil, fmt.Errorf("initiatives fetch: %w", err)
	}
	visible := domain.VisibleInitiatives(list)
	s.cache.Set(cacheKey, visible)

	s.logger.Debug("initiatives loaded",
		zap.Int("total", len(list)),
		zap.Int("visible", len(visible)),
	)
	return visible, nil
}

// GetOverview fetches statistics and merchant detail concurrently.
func (s *MerchantService) GetOverview(ctx context.Context, initiativeID string) (*domain.InitiativeOverview, error) {
	ctx, span := tracer.Start(ctx, "MerchantService.GetOverview")
	defer span.End()
	span.SetAttributes(attribute.String("initiative.id", initiativeID))

	var (
		stats  *domain.InitiativeStatistics
		detail *domain.MerchantDetail
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.overview.GetStatistics(gctx, initiativeID)
		if err != nil {
			return fmt.Errorf("statistics fetch: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		detail, err = s.overview.GetMerchantDetail(gctx, initiativeID)
		if err != nil {
			return fmt.Errorf("merchant detail fetch: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("overview fetch failed",
			zap.String("initiative_id", initiativeID),
			zap.Error(err),
		)
		s.dispatch(ctx, "initiatives.overview", err)
		return nil, err
	}

	return &domain.InitiativeOverview{
		InitiativeID:  initiativeID,
		AmountCents:   stats.AmountCents,
		RefundedCents: stats.RefundedCents,
		Amount:        domain.FormatCents(stats.AmountCents),
		Refunded:      domain.FormatCents(stats.RefundedCents),
		Detail:        detail,
	}, nil
}

func (s *MerchantService) dispatch(ctx context.Context, component string, err error) {
	s.alerts.Dispatch(ctx, domain.Alert{
		ID:          component,
		Title:       domain.AlertGenericTitle,
		Description: domain.AlertGenericDescription,
		Component:   component,
		Err:         err,
	})
}
