package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/port"

	"go.uber.org/zap"
)

// PartyDirectory lists the organizations of the calling user and remembers
// them for the Party Resolver.
type PartyDirectory struct {
	lister port.PartyLister
	store  port.SessionStore
	logger *zap.Logger
}

// NewPartyDirectory creates the directory.
func NewPartyDirectory(lister port.PartyLister, store port.SessionStore, logger *zap.Logger) *PartyDirectory {
	return &PartyDirectory{lister: lister, store: store, logger: logger}
}

// ListParties fetches the caller's organizations and stores them as the
// session's known parties.
func (d *PartyDirectory) ListParties(ctx context.Context) ([]domain.Party, error) {
	ctx, span := tracer.Start(ctx, "PartyDirectory.ListParties")
	defer span.End()

	scope, err := sessionScope(ctx)
	if err != nil {
		return nil, err
	}
	list, err := d.lister.ListParties(ctx)
	if err != nil {
		return nil, fmt.Errorf("parties fetch: %w", err)
	}
	if list == nil {
		list = []domain.Party{}
	}
	if err := d.store.SetKnownParties(ctx, scope, list); err != nil {
		d.logger.Warn("failed to store known parties", zap.Error(err))
	}
	return list, nil
}
