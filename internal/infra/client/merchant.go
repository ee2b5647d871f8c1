package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// MerchantClient talks to the merchant backend: initiatives, transactions,
// overview data, consent and points of sale.
type MerchantClient struct {
	backend *Backend
}

// NewMerchantClient creates a MerchantClient.
func NewMerchantClient(backend *Backend) *MerchantClient {
	return &MerchantClient{backend: backend}
}

// GetMerchantInitiatives lists the initiatives of the calling merchant.
func (c *MerchantClient) GetMerchantInitiatives(ctx context.Context) ([]domain.Initiative, error) {
	ctx, span := tracer.Start(ctx, "MerchantClient.GetMerchantInitiatives")
	defer span.End()

	var out []domain.Initiative
	if err := c.backend.do(ctx, http.MethodGet, "/initiatives", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransactions returns a page of in-progress transactions.
func (c *MerchantClient) GetTransactions(ctx context.Context, f domain.TransactionFilter) (*domain.Page[domain.MerchantTransaction], error) {
	return c.transactionsPage(ctx, "MerchantClient.GetTransactions", "/initiatives/%s/transactions", f)
}

// GetProcessedTransactions returns a page of processed transactions.
func (c *MerchantClient) GetProcessedTransactions(ctx context.Context, f domain.TransactionFilter) (*domain.Page[domain.MerchantTransaction], error) {
	return c.transactionsPage(ctx, "MerchantClient.GetProcessedTransactions", "/initiatives/%s/transactions/processed", f)
}

func (c *MerchantClient) transactionsPage(ctx context.Context, op, pathFmt string, f domain.TransactionFilter) (*domain.Page[domain.MerchantTransaction], error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("initiative.id", f.InitiativeID),
		attribute.Int("page", f.Page),
	)

	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	if f.FiscalCode != "" {
		q.Set("fiscalCode", f.FiscalCode)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	path := fmt.Sprintf(pathFmt, url.PathEscape(f.InitiativeID)) + "?" + q.Encode()

	var page domain.Page[domain.MerchantTransaction]
	if err := c.backend.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	if page.Content == nil {
		page.Content = []domain.MerchantTransaction{}
	}
	return &page, nil
}

// GetStatistics returns the merchant's amounts for an initiative.
func (c *MerchantClient) GetStatistics(ctx context.Context, initiativeID string) (*domain.InitiativeStatistics, error) {
	ctx, span := tracer.Start(ctx, "MerchantClient.GetStatistics")
	defer span.End()
	span.SetAttributes(attribute.String("initiative.id", initiativeID))

	var stats domain.InitiativeStatistics
	path := fmt.Sprintf("/initiatives/%s/statistics", url.PathEscape(initiativeID))
	if err := c.backend.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetMerchantDetail returns the merchant registry data for an initiative.
func (c *MerchantClient) GetMerchantDetail(ctx context.Context, initiativeID string) (*domain.MerchantDetail, error) {
	ctx, span := tracer.Start(ctx, "MerchantClient.GetMerchantDetail")
	defer span.End()
	span.SetAttributes(attribute.String("initiative.id", initiativeID))

	var detail domain.MerchantDetail
	path := fmt.Sprintf("/initiatives/%s/detail", url.PathEscape(initiativeID))
	if err := c.backend.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetPortalConsent returns the pending terms-of-service consent.
func (c *MerchantClient) GetPortalConsent(ctx context.Context) (*domain.PortalConsent, error) {
	ctx, span := tracer.Start(ctx, "MerchantClient.GetPortalConsent")
	defer span.End()

	var consent domain.PortalConsent
	if err := c.backend.do(ctx, http.MethodGet, "/consent", nil, &consent); err != nil {
		return nil, err
	}
	return &consent, nil
}

// SavePortalConsent records acceptance of versionID.
func (c *MerchantClient) SavePortalConsent(ctx context.Context, versionID string) error {
	ctx, span := tracer.Start(ctx, "MerchantClient.SavePortalConsent")
	defer span.End()
	span.SetAttributes(attribute.String("consent.version", versionID))

	return c.backend.do(ctx, http.MethodPost, "/consent", map[string]string{"versionId": versionID}, nil)
}

// GetPointsOfSale lists the merchant's points of sale.
func (c *MerchantClient) GetPointsOfSale(ctx context.Context) ([]domain.PointOfSale, error) {
	ctx, span := tracer.Start(ctx, "MerchantClient.GetPointsOfSale")
	defer span.End()

	var out []domain.PointOfSale
	if err := c.backend.do(ctx, http.MethodGet, "/points-of-sale", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePointsOfSale replaces the merchant's points of sale.
func (c *MerchantClient) UpdatePointsOfSale(ctx context.Context, pos []domain.PointOfSale) error {
	ctx, span := tracer.Start(ctx, "MerchantClient.UpdatePointsOfSale")
	defer span.End()
	span.SetAttributes(attribute.Int("pos.count", len(pos)))

	return c.backend.do(ctx, http.MethodPut, "/points-of-sale", pos, nil)
}
