package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/client"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"

	"go.uber.org/zap"
)

func newBackend(t *testing.T, name string, h http.HandlerFunc) *client.Backend {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	return client.NewBackend(name, srv.Client(), srv.URL, cfg, observability.NewMetrics(), zap.NewNop())
}

func ctxWithToken() context.Context {
	return session.WithToken(context.Background(), "tok-123", &domain.JWTClaims{UID: "u"})
}

func TestMerchantClient_GetTransactions(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	b := newBackend(t, "merchant", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":       []map[string]any{{"trxId": "t1", "status": "AUTHORIZED", "effectiveAmount": 1250}},
			"pageNo":        0,
			"pageSize":      10,
			"totalElements": 1,
			"totalPages":    1,
		})
	})
	c := client.NewMerchantClient(b)

	page, err := c.GetTransactions(ctxWithToken(), domain.TransactionFilter{
		InitiativeID: "ini-1", Page: 0, FiscalCode: "RSSMRA80A01H501U", Status: domain.StatusAuthorized,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/initiatives/ini-1/transactions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "fiscalCode=RSSMRA80A01H501U&page=0&status=AUTHORIZED" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(page.Content) != 1 || page.Content[0].EffectiveAmount != 1250 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestMerchantClient_EmptyPageHasContent(t *testing.T) {
	b := newBackend(t, "merchant", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pageNo":0,"pageSize":10,"totalElements":0,"totalPages":0}`))
	})
	page, err := client.NewMerchantClient(b).GetProcessedTransactions(ctxWithToken(), domain.TransactionFilter{InitiativeID: "ini-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Content == nil {
		t.Error("expected non-nil content")
	}
}

func TestBackend_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	b := newBackend(t, "merchant", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"initiativeId":"ini-1","status":"PUBLISHED"}]`))
	})

	list, err := client.NewMerchantClient(b).GetMerchantInitiatives(ctxWithToken())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 || len(list) != 1 {
		t.Errorf("calls=%d list=%v", calls.Load(), list)
	}
}

func TestBackend_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	b := newBackend(t, "payment", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.NewPaymentClient(b).DeleteTransaction(ctxWithToken(), "trx-1")

	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single call, got %d", calls.Load())
	}
}

func TestBackend_ServerErrorMapsToExternalService(t *testing.T) {
	b := newBackend(t, "payment", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.NewPaymentClient(b).DeleteTransaction(ctxWithToken(), "trx-1")

	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) || ext.Service != "payment" {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestPaymentClient_CreateTransaction(t *testing.T) {
	var got domain.CreateTransactionRequest
	b := newBackend(t, "payment", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"trx-9","trxCode":"ab12cd34","status":"CREATED","trxExpirationMinutes":4320}`))
	})

	resp, err := client.NewPaymentClient(b).CreateTransaction(ctxWithToken(), &domain.CreateTransactionRequest{
		AmountCents: 1999, IDTrxIssuer: "iss-1", InitiativeID: "ini-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.AmountCents != 1999 || got.IDTrxIssuer != "iss-1" {
		t.Errorf("unexpected request body: %+v", got)
	}
	if resp.TrxCode != "ab12cd34" || resp.TrxExpirationMinutes != 4320 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPartyClient_NotFoundIsNil(t *testing.T) {
	b := newBackend(t, "party", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	p, err := client.NewPartyClient(b).FetchPartyDetails(ctxWithToken(), "org-1", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p != nil {
		t.Errorf("expected nil party, got %+v", p)
	}
}

func TestPartyClient_KnownPartiesSkipBackend(t *testing.T) {
	var calls atomic.Int32
	b := newBackend(t, "party", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	known := []domain.Party{{PartyID: "org-1", Status: domain.PartyStatusActive}}
	p, err := client.NewPartyClient(b).FetchPartyDetails(ctxWithToken(), "org-1", known)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p == nil || p.PartyID != "org-1" {
		t.Errorf("unexpected party: %+v", p)
	}
	if calls.Load() != 0 {
		t.Errorf("backend called %d times", calls.Load())
	}
}

func TestPartyClient_Fetch(t *testing.T) {
	b := newBackend(t, "party", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/institutions/org-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"partyId":"org-1","description":"Bar Centrale","status":"ACTIVE"}`))
	})

	p, err := client.NewPartyClient(b).FetchPartyDetails(ctxWithToken(), "org-1", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Description != "Bar Centrale" || !p.IsActive() {
		t.Errorf("unexpected party: %+v", p)
	}
}
