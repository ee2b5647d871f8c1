// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
)

// PartyFetcher retrieves organization details. A nil party with a nil error
// means the backend has no record of partyID.
type PartyFetcher interface {
	FetchPartyDetails(ctx context.Context, partyID string, known []domain.Party) (*domain.Party, error)
}

// InitiativesFetcher lists the initiatives of the current merchant.
type InitiativesFetcher interface {
	GetMerchantInitiatives(ctx context.Context) ([]domain.Initiative, error)
}

// OverviewFetcher retrieves per-initiative overview data.
type OverviewFetcher interface {
	GetStatistics(ctx context.Context, initiativeID string) (*domain.InitiativeStatistics, error)
	GetMerchantDetail(ctx context.Context, initiativeID string) (*domain.MerchantDetail, error)
}

// TransactionsFetcher retrieves transaction pages.
type TransactionsFetcher interface {
	GetTransactions(ctx context.Context, f domain.TransactionFilter) (*domain.Page[domain.MerchantTransaction], error)
	GetProcessedTransactions(ctx context.Context, f domain.TransactionFilter) (*domain.Page[domain.MerchantTransaction], error)
}

// TransactionDeleter cancels a transaction.
type TransactionDeleter interface {
	DeleteTransaction(ctx context.Context, trxID string) error
}

// TransactionCreator creates a discount transaction.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.TransactionResponse, error)
}

// ConsentAPI reads and saves the portal terms-of-service consent.
type ConsentAPI interface {
	GetPortalConsent(ctx context.Context) (*domain.PortalConsent, error)
	SavePortalConsent(ctx context.Context, versionID string) error
}

// PointsOfSaleAPI reads and updates the merchant's points of sale.
type PointsOfSaleAPI interface {
	GetPointsOfSale(ctx context.Context) ([]domain.PointOfSale, error)
	UpdatePointsOfSale(ctx context.Context, pos []domain.PointOfSale) error
}

// SessionStore is the per-session client state: the selected party is
// persisted, the loading flag is in-memory only.
type SessionStore interface {
	SelectedParty(ctx context.Context, session string) (*domain.Party, error)
	SetSelectedParty(ctx context.Context, session string, p *domain.Party) error
	ClearSelectedParty(ctx context.Context, session string) error
	KnownParties(ctx context.Context, session string) ([]domain.Party, error)
	SetKnownParties(ctx context.Context, session string, parties []domain.Party) error
	SetPartyLoading(session string, loading bool)
	PartyLoading(session string) bool
}

// Invalidator drops client visible snapshots that a mutation made stale.
type Invalidator interface {
	Invalidate(ctx context.Context, initiativeID string) error
}

// Tracker emits analytics events.
type Tracker interface {
	Track(ctx context.Context, event string, props map[string]string)
}

// AlertDispatcher delivers user visible error alerts.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert domain.Alert)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeletePrefix(prefix string) int
}

// PartyLister lists the organizations the caller belongs to.
type PartyLister interface {
	ListParties(ctx context.Context) ([]domain.Party, error)
}
