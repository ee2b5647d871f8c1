package sessionstore

import (
	"context"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/cache"
)

// Memory keeps session state in process. State expires after ttl.
type Memory struct {
	parties *cache.InMemory[*domain.Party]
	known   *cache.InMemory[[]domain.Party]
	loading *loadingFlags
}

// NewMemory creates an in-memory session store.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		parties: cache.New[*domain.Party](ttl),
		known:   cache.New[[]domain.Party](ttl),
		loading: newLoadingFlags(),
	}
}

func (m *Memory) SelectedParty(_ context.Context, session string) (*domain.Party, error) {
	p, ok := m.parties.Get(session)
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (m *Memory) SetSelectedParty(_ context.Context, session string, p *domain.Party) error {
	m.parties.Set(session, p)
	return nil
}

func (m *Memory) ClearSelectedParty(_ context.Context, session string) error {
	m.parties.Delete(session)
	return nil
}

func (m *Memory) KnownParties(_ context.Context, session string) ([]domain.Party, error) {
	list, _ := m.known.Get(session)
	return list, nil
}

func (m *Memory) SetKnownParties(_ context.Context, session string, parties []domain.Party) error {
	m.known.Set(session, parties)
	return nil
}

func (m *Memory) SetPartyLoading(session string, loading bool) {
	m.loading.set(session, loading)
}

func (m *Memory) PartyLoading(session string) bool {
	return m.loading.get(session)
}
