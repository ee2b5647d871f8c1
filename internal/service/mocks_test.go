package service_test

import (
	"context"
	"sync"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/session"
)

// --- Mocks ---

type mockMerchant struct {
	mu          sync.Mutex
	initiatives []domain.Initiative
	initErr     error
	initCalls   int

	stats     *domain.InitiativeStatistics
	statsErr  error
	detail    *domain.MerchantDetail
	detailErr error

	page      *domain.Page[domain.MerchantTransaction]
	pageErr   error
	pageCalls int
	processed int
	lastPage  domain.TransactionFilter

	consent      *domain.PortalConsent
	consentErr   error
	saveErr      error
	savedVersion string

	pos       []domain.PointOfSale
	posErr    error
	posUpdate []domain.PointOfSale
}

func (m *mockMerchant) GetMerchantInitiatives(_ context.Context) ([]domain.Initiative, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	return m.initiatives, m.initErr
}

func (m *mockMerchant) GetStatistics(_ context.Context, _ string) (*domain.InitiativeStatistics, error) {
	return m.stats, m.statsErr
}

func (m *mockMerchant) GetMerchantDetail(_ context.Context, _ string) (*domain.MerchantDetail, error) {
	return m.detail, m.detailErr
}

func (m *mockMerchant) GetTransactions(_ context.Context, f domain.TransactionFilter) (*domain.Page[domain.MerchantTransaction], error) {
	m.pageCalls++
	m.lastPage = f
	return m.page, m.pageErr
}

func (m *mockMerchant) GetProcessedTransactions(_ context.Context, f domain.TransactionFilter) (*domain.Page[domain.MerchantTransaction], error) {
	m.processed++
	m.lastPage = f
	return m.page, m.pageErr
}

func (m *mockMerchant) GetPortalConsent(_ context.Context) (*domain.PortalConsent, error) {
	return m.consent, m.consentErr
}

func (m *mockMerchant) SavePortalConsent(_ context.Context, versionID string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedVersion = versionID
	return nil
}

func (m *mockMerchant) GetPointsOfSale(_ context.Context) ([]domain.PointOfSale, error) {
	return m.pos, m.posErr
}

func (m *mockMerchant) UpdatePointsOfSale(_ context.Context, pos []domain.PointOfSale) error {
	m.posUpdate = pos
	return m.posErr
}

type mockPayment struct {
	deleted  []string
	delErr   error
	created  *domain.CreateTransactionRequest
	createFn func(*domain.CreateTransactionRequest) (*domain.TransactionResponse, error)
}

func (m *mockPayment) DeleteTransaction(_ context.Context, trxID string) error {
	m.deleted = append(m.deleted, trxID)
	return m.delErr
}

func (m *mockPayment) CreateTransaction(_ context.Context, req *domain.CreateTransactionRequest) (*domain.TransactionResponse, error) {
	m.created = req
	if m.createFn != nil {
		return m.createFn(req)
	}
	return &domain.TransactionResponse{ID: "trx-new", InitiativeID: req.InitiativeID, AmountCents: req.AmountCents}, nil
}

type mockAlerts struct {
	alerts []domain.Alert
}

func (m *mockAlerts) Dispatch(_ context.Context, a domain.Alert) {
	m.alerts = append(m.alerts, a)
}

func merchantCtx(uid, merchantID string) context.Context {
	return session.WithToken(context.Background(), "tok", &domain.JWTClaims{UID: uid, OrgID: "org-1", MerchantID: merchantID})
}
