package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// PaymentClient talks to the payment backend that owns transaction
// lifecycle mutations.
type PaymentClient struct {
	backend *Backend
}

// NewPaymentClient creates a PaymentClient.
func NewPaymentClient(backend *Backend) *PaymentClient {
	return &PaymentClient{backend: backend}
}

// CreateTransaction opens a discount transaction.
func (c *PaymentClient) CreateTransaction(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.TransactionResponse, error) {
	ctx, span := tracer.Start(ctx, "PaymentClient.CreateTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("initiative.id", req.InitiativeID),
		attribute.String("trx.issuer_id", req.IDTrxIssuer),
	)

	var out domain.TransactionResponse
	if err := c.backend.do(ctx, http.MethodPost, "/transactions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTransaction cancels trxID.
func (c *PaymentClient) DeleteTransaction(ctx context.Context, trxID string) error {
	ctx, span := tracer.Start(ctx, "PaymentClient.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("trx.id", trxID))

	return c.backend.do(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(trxID), nil, nil)
}
