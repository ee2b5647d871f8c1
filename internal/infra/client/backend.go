// Package client implements the HTTP adapters for the merchant, payment and
// party backends. Every call forwards the caller's bearer token and runs
// through a circuit breaker, retry with backoff and a bulkhead.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// Backend is the shared transport for one backend service.
type Backend struct {
	name       string
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewBackend creates the transport for the service called name.
func NewBackend(
	name string,
	httpClient *http.Client,
	baseURL string,
	cfg resilience.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Backend {
	return &Backend{
		name:       name,
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         resilience.NewCircuitBreaker(name),
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// statusError is a non-2xx answer from a backend.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

// do sends one request and decodes a JSON answer into dest when dest is
// not nil. 4xx answers are not retried.
func (b *Backend) do(ctx context.Context, method, path string, payload, dest any) error {
	if err := b.bulkhead.Acquire(ctx); err != nil {
		return &domain.ErrTimeout{Operation: b.name + " " + path}
	}
	defer b.bulkhead.Release()

	_, err := b.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, b.cfg, func() error {
			return b.roundTrip(ctx, method, path, payload, dest)
		})
	})
	if err == nil {
		return nil
	}
	return b.mapError(path, err)
}

func (b *Backend) roundTrip(ctx context.Context, method, path string, payload, dest any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return resilience.Permanent(err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := session.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Error("backend request failed",
			zap.String("service", b.name),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.logger.Warn("backend non-2xx",
			zap.String("service", b.name),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		serr := &statusError{code: resp.StatusCode, body: string(raw)}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return resilience.Permanent(serr)
		}
		return serr
	}

	b.logger.Debug("backend OK",
		zap.String("service", b.name),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	if dest == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return resilience.Permanent(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func (b *Backend) mapError(path string, err error) error {
	if resilience.IsOpen(err) {
		b.metrics.IncrExternalError(b.name)
		return &domain.ErrCircuitOpen{Service: b.name}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		b.metrics.IncrExternalError(b.name)
		return &domain.ErrTimeout{Operation: b.name + " " + path}
	}

	var serr *statusError
	if errors.As(err, &serr) {
		switch serr.code {
		case http.StatusUnauthorized:
			return &domain.ErrUnauthorized{Message: b.name + " rejected the session token"}
		case http.StatusForbidden:
			return &domain.ErrForbidden{Action: path}
		case http.StatusNotFound:
			return &domain.ErrNotFound{Resource: b.name, ID: path}
		case http.StatusConflict:
			return &domain.ErrConflict{Message: serr.body}
		case http.StatusBadRequest:
			return &domain.ErrValidation{Field: "request", Message: serr.body}
		}
	}

	b.metrics.IncrExternalError(b.name)
	return &domain.ErrExternalService{Service: b.name, Err: err}
}
