package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/cache"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/service"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/workflow"

	"go.uber.org/zap"
)

func newTransactionService(m *mockMerchant, p *mockPayment, a *mockAlerts) *service.TransactionService {
	return service.NewTransactionService(m, p, p, a, cache.New[any](time.Minute), "www.idpay.it", observability.NewMetrics(), zap.NewNop())
}

func samplePage() *domain.Page[domain.MerchantTransaction] {
	return &domain.Page[domain.MerchantTransaction]{
		Content: []domain.MerchantTransaction{
			{
				TrxID: "t1", TrxCode: "qwertyui", Status: domain.StatusIdentified, EffectiveAmount: 1250,
				TrxDate: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), TrxExpirationMinutes: 1440,
			},
			{TrxID: "t2", Status: domain.StatusAuthorized, RewardAmount: 300},
		},
		PageNo:        0,
		PageSize:      10,
		TotalElements: 12,
		TotalPages:    2,
	}
}

func TestListTransactions_RowsCarryDisplayAndActions(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})

	view, err := svc.ListTransactions(merchantCtx("u1", "m1"), domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !view.HasNext || view.HasPrevious {
		t.Errorf("HasNext=%v HasPrevious=%v", view.HasNext, view.HasPrevious)
	}
	if len(view.Content) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(view.Content))
	}
	first := view.Content[0]
	if len(first.Actions) != 2 || first.Display.LabelKey != "identified" || first.EffectiveAmount != "12,50 €" {
		t.Errorf("unexpected first row: %+v", first)
	}
	second := view.Content[1]
	if len(second.Actions) != 1 || second.Actions[0] != workflow.ActionCancel {
		t.Errorf("unexpected second row actions: %v", second.Actions)
	}
}

func TestListTransactions_CachedUntilInvalidated(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})
	ctx := merchantCtx("u1", "m1")
	f := domain.TransactionFilter{InitiativeID: "ini-1"}

	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, f)
	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, f)
	if m.pageCalls != 1 {
		t.Fatalf("expected cached page, got %d calls", m.pageCalls)
	}

	_ = svc.Invalidate(ctx, "ini-1")
	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, f)
	if m.pageCalls != 2 {
		t.Errorf("expected refetch after invalidate, got %d calls", m.pageCalls)
	}
}

func TestListTransactions_ProcessedVariant(t *testing.T) {
	m := &mockMerchant{page: &domain.Page[domain.MerchantTransaction]{
		Content: []domain.MerchantTransaction{{TrxID: "t1", Status: domain.StatusRewarded}},
	}}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})

	view, err := svc.ListTransactions(merchantCtx("u1", "m1"), domain.VariantProcessed,
		domain.TransactionFilter{InitiativeID: "ini-1", Status: domain.StatusRewarded})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m.processed != 1 || m.pageCalls != 0 {
		t.Errorf("processed=%d pageCalls=%d", m.processed, m.pageCalls)
	}
	if len(view.Content[0].Actions) != 0 {
		t.Errorf("terminal rows must have no actions: %v", view.Content[0].Actions)
	}
}

func TestListTransactions_ValidationBeforeBackend(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})
	ctx := merchantCtx("u1", "m1")

	cases := []struct {
		variant domain.StatusVariant
		filter  domain.TransactionFilter
	}{
		{domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1", FiscalCode: "NOTATAXCODE"}},
		{domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1", Status: domain.StatusRewarded}},
		{domain.VariantProcessed, domain.TransactionFilter{InitiativeID: "ini-1", Status: domain.StatusCreated}},
		{domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1", Page: -1}},
	}
	for _, tc := range cases {
		_, err := svc.ListTransactions(ctx, tc.variant, tc.filter)
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("filter %+v: expected ErrValidation, got %v", tc.filter, err)
		}
	}
	if m.pageCalls != 0 || m.processed != 0 {
		t.Errorf("backend must not be called on invalid input")
	}
}

func TestCreateTransaction(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	p := &mockPayment{}
	svc := newTransactionService(m, p, &mockAlerts{})
	ctx := merchantCtx("u1", "m1")
	f := domain.TransactionFilter{InitiativeID: "ini-1"}
	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, f)

	resp, err := svc.CreateTransaction(ctx, "ini-1", "12,50", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.ID != "trx-new" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if p.created.AmountCents != 1250 || p.created.IDTrxIssuer == "" || p.created.TrxDate.IsZero() {
		t.Errorf("unexpected request: %+v", p.created)
	}

	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, f)
	if m.pageCalls != 2 {
		t.Errorf("expected pages invalidated after create, got %d calls", m.pageCalls)
	}
}

func TestCreateTransaction_InvalidAmount(t *testing.T) {
	p := &mockPayment{}
	svc := newTransactionService(&mockMerchant{}, p, &mockAlerts{})

	for _, amount := range []string{"", "0", "-3", "abc", "1,234"} {
		_, err := svc.CreateTransaction(merchantCtx("u1", "m1"), "ini-1", amount, "")
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("amount %q: expected ErrValidation, got %v", amount, err)
		}
	}
	if p.created != nil {
		t.Error("backend must not be called on invalid amount")
	}
}

func TestCreateTransaction_FailureAlerts(t *testing.T) {
	p := &mockPayment{createFn: func(*domain.CreateTransactionRequest) (*domain.TransactionResponse, error) {
		return nil, errors.New("payment down")
	}}
	a := &mockAlerts{}
	svc := newTransactionService(&mockMerchant{}, p, a)

	if _, err := svc.CreateTransaction(merchantCtx("u1", "m1"), "ini-1", "5", ""); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(a.alerts) != 1 {
		t.Errorf("expected one alert, got %d", len(a.alerts))
	}
}

func TestListTransactions_FailureAlerts(t *testing.T) {
	m := &mockMerchant{pageErr: errors.New("merchant down")}
	a := &mockAlerts{}
	svc := newTransactionService(m, &mockPayment{}, a)

	_, err := svc.ListTransactions(merchantCtx("u1", "m1"), domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(a.alerts) != 1 || a.alerts[0].Component != "transactions.list" {
		t.Errorf("expected one transactions.list alert, got %+v", a.alerts)
	}
}

func TestListTransactions_ScopedPerMerchant(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})
	f := domain.TransactionFilter{InitiativeID: "ini-1"}

	_, _ = svc.ListTransactions(merchantCtx("u1", "m1"), domain.VariantPreProcessing, f)
	_, _ = svc.ListTransactions(merchantCtx("u2", "m2"), domain.VariantPreProcessing, f)
	if m.pageCalls != 2 {
		t.Errorf("merchants must not share cached pages, got %d calls", m.pageCalls)
	}
}

func TestListTransactions_NoMerchantClaims(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})
	noOrg := session.WithToken(context.Background(), "tok", &domain.JWTClaims{UID: "u1"})

	for _, ctx := range []context.Context{context.Background(), noOrg} {
		_, err := svc.ListTransactions(ctx, domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1"})
		var unauthorized *domain.ErrUnauthorized
		if !errors.As(err, &unauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	}
	if m.pageCalls != 0 {
		t.Errorf("backend must not be called without a merchant, got %d calls", m.pageCalls)
	}
}

func TestAuthorize(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})

	details, err := svc.Authorize(merchantCtx("u1", "m1"), "ini-1", "t1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if details.MagicLink != "https://www.idpay.it/authorizationlink/qwertyui" {
		t.Errorf("MagicLink = %q", details.MagicLink)
	}
	if details.ExpirationDate != "02/03/2024" || details.ExpirationTime != "09:00" {
		t.Errorf("expiration = %s %s", details.ExpirationDate, details.ExpirationTime)
	}

	_, err = svc.Authorize(merchantCtx("u1", "m1"), "ini-1", "t2")
	var invalid *domain.ErrInvalidTransition
	if !errors.As(err, &invalid) {
		t.Errorf("expected ErrInvalidTransition for authorized trx, got %v", err)
	}
}

func TestAuthorize_IncompleteBackendRow(t *testing.T) {
	m := &mockMerchant{page: &domain.Page[domain.MerchantTransaction]{
		Content:    []domain.MerchantTransaction{{TrxID: "t1", TrxCode: "qwertyui", Status: domain.StatusCreated}},
		TotalPages: 1,
	}}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})

	_, err := svc.Authorize(merchantCtx("u1", "m1"), "ini-1", "t1")
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "trxDate" {
		t.Errorf("expected ErrValidation on trxDate, got %v", err)
	}
}

func TestAuthorize_UnknownTransaction(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	svc := newTransactionService(m, &mockPayment{}, &mockAlerts{})

	_, err := svc.Authorize(merchantCtx("u1", "m1"), "ini-1", "missing")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Both variants are scanned up to their last page.
	if m.pageCalls != 2 || m.processed != 2 {
		t.Errorf("pageCalls=%d processed=%d", m.pageCalls, m.processed)
	}
}

func TestAuthorizationQRCode(t *testing.T) {
	svc := newTransactionService(&mockMerchant{page: samplePage()}, &mockPayment{}, &mockAlerts{})

	raw, name, err := svc.AuthorizationQRCode(merchantCtx("u1", "m1"), "ini-1", "t1", 128)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if name != "qrcode-qwertyui.png" {
		t.Errorf("name = %q", name)
	}
	if len(raw) < 8 || string(raw[1:4]) != "PNG" {
		t.Error("expected a PNG payload")
	}
}

func TestCancel_PromptThenConfirm(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	p := &mockPayment{}
	svc := newTransactionService(m, p, &mockAlerts{})
	ctx := merchantCtx("u1", "m1")
	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1"})

	res, err := svc.Cancel(ctx, "ini-1", "t2", false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Prompt == nil || res.Prompt.ConfirmationKey != workflow.CancelConfirmAuthorizedKey || res.Cancelled {
		t.Errorf("unexpected prompt result: %+v", res)
	}
	if len(p.deleted) != 0 {
		t.Fatal("prompt must not delete")
	}

	res, err = svc.Cancel(ctx, "ini-1", "t2", true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.Cancelled || !res.Reload {
		t.Errorf("unexpected confirm result: %+v", res)
	}
	if len(p.deleted) != 1 || p.deleted[0] != "t2" {
		t.Errorf("deleted = %v", p.deleted)
	}

	before := m.pageCalls
	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1"})
	if m.pageCalls != before+1 {
		t.Errorf("expected refetch after cancel, got %d calls", m.pageCalls-before)
	}
}

func TestCancel_FailureKeepsPages(t *testing.T) {
	m := &mockMerchant{page: samplePage()}
	p := &mockPayment{delErr: errors.New("boom")}
	a := &mockAlerts{}
	svc := newTransactionService(m, p, a)
	ctx := merchantCtx("u1", "m1")
	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1"})

	_, err := svc.Cancel(ctx, "ini-1", "t1", true)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(a.alerts) != 1 {
		t.Errorf("expected one alert, got %d", len(a.alerts))
	}

	before := m.pageCalls
	_, _ = svc.ListTransactions(ctx, domain.VariantPreProcessing, domain.TransactionFilter{InitiativeID: "ini-1"})
	if m.pageCalls != before {
		t.Errorf("pages must stay cached after a failed cancel, got %d extra calls", m.pageCalls-before)
	}
}

func TestCancel_TerminalRejected(t *testing.T) {
	m := &mockMerchant{page: &domain.Page[domain.MerchantTransaction]{
		Content:    []domain.MerchantTransaction{{TrxID: "t1", Status: domain.StatusCancelled}},
		TotalPages: 1,
	}}
	p := &mockPayment{}
	svc := newTransactionService(m, p, &mockAlerts{})

	_, err := svc.Cancel(merchantCtx("u1", "m1"), "ini-1", "t1", true)
	var invalid *domain.ErrInvalidTransition
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(p.deleted) != 0 {
		t.Error("terminal transactions must not be deleted")
	}
}

func TestCancel_BackendStatusWins(t *testing.T) {
	// The backend already rewarded t1; nothing the portal sends can cancel it.
	m := &mockMerchant{page: &domain.Page[domain.MerchantTransaction]{
		Content:    []domain.MerchantTransaction{{TrxID: "t1", Status: domain.StatusRewarded}},
		TotalPages: 1,
	}}
	p := &mockPayment{}
	svc := newTransactionService(m, p, &mockAlerts{})

	_, err := svc.Cancel(merchantCtx("u1", "m1"), "ini-1", "t1", true)
	var invalid *domain.ErrInvalidTransition
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(p.deleted) != 0 {
		t.Errorf("deleted = %v", p.deleted)
	}
}
