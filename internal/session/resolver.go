package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("session")

// PartyResolver decides which organization the session acts for: the
// cached party, a freshly fetched one or a placeholder built from the token.
type PartyResolver struct {
	fetcher   port.PartyFetcher
	store     port.SessionStore
	tracker   port.Tracker
	logoutURL string
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewPartyResolver creates the resolver with all dependencies injected.
func NewPartyResolver(
	fetcher port.PartyFetcher,
	store port.SessionStore,
	tracker port.Tracker,
	logoutURL string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PartyResolver {
	return &PartyResolver{
		fetcher:   fetcher,
		store:     store,
		tracker:   tracker,
		logoutURL: logoutURL,
		metrics:   metrics,
		logger:    logger,
	}
}

// ResolveSelectedParty returns the party of the session identified by token.
//
// A token without organization claims yields *domain.ErrSessionUnresolvable
// and the party backend is never called. A cached party with the same id is
// returned as is. A fetched party that is not ACTIVE yields
// *domain.ErrInvalidPartyState and clears the cache. A party unknown to the
// backend is synthesized from the token.
func (r *PartyResolver) ResolveSelectedParty(ctx context.Context, token string) (*domain.Party, error) {
	ctx, span := tracer.Start(ctx, "PartyResolver.ResolveSelectedParty")
	defer span.End()

	claims := ParseJWT(token)
	cfg := PartyConfigFromClaims(claims)
	if cfg == nil {
		r.tracker.Track(ctx, domain.EventPartyIDNotInToken, nil)
		r.metrics.IncrPartyResolution(observability.ResolutionUnresolvable)
		return nil, &domain.ErrSessionUnresolvable{RedirectURL: r.logoutURL}
	}
	span.SetAttributes(attribute.String("party.id", cfg.PartyID))

	key := Key(claims)

	cached, err := r.store.SelectedParty(ctx, key)
	if err != nil {
		r.logger.Warn("session store read failed, fetching party",
			zap.String("session", key),
			zap.Error(err),
		)
		cached = nil
	}
	if cached != nil && cached.PartyID == cfg.PartyID {
		r.metrics.IncrCacheHit("party")
		r.metrics.IncrPartyResolution(observability.ResolutionCached)
		return cached, nil
	}
	r.metrics.IncrCacheMiss("party")

	r.store.SetPartyLoading(key, true)
	defer r.store.SetPartyLoading(key, false)

	known, err := r.store.KnownParties(ctx, key)
	if err != nil {
		known = nil
	}

	party, err := r.fetcher.FetchPartyDetails(ctx, cfg.PartyID, known)
	if err != nil {
		r.clear(ctx, key)
		r.metrics.IncrPartyResolution(observability.ResolutionError)
		r.logger.Error("party fetch failed",
			zap.String("party_id", cfg.PartyID),
			zap.Error(err),
		)
		return nil, err
	}

	if party == nil {
		r.tracker.Track(ctx, domain.EventPartyIDNotFound, map[string]string{"partyId": cfg.PartyID})
		party = domain.SynthesizeParty(cfg)
		if err := r.store.SetSelectedParty(ctx, key, party); err != nil {
			return nil, fmt.Errorf("store synthesized party: %w", err)
		}
		r.metrics.IncrPartyResolution(observability.ResolutionSynthesized)
		r.logger.Info("party synthesized from token",
			zap.String("party_id", party.PartyID),
			zap.String("source", string(party.Source)),
		)
		return party, nil
	}

	if !party.IsActive() {
		r.clear(ctx, key)
		r.metrics.IncrPartyResolution(observability.ResolutionInvalidState)
		r.logger.Warn("party not active",
			zap.String("party_id", party.PartyID),
			zap.String("status", party.Status),
		)
		return nil, &domain.ErrInvalidPartyState{Status: party.Status}
	}

	// Roles always come from the token.
	resolved := *party
	resolved.Roles = cfg.Roles
	resolved.Source = domain.PartySourceAuthoritative
	if err := r.store.SetSelectedParty(ctx, key, &resolved); err != nil {
		return nil, fmt.Errorf("store party: %w", err)
	}
	r.metrics.IncrPartyResolution(observability.ResolutionFetched)
	return &resolved, nil
}

// Logout forgets the session party and returns where to send the user.
func (r *PartyResolver) Logout(ctx context.Context, token string) (string, error) {
	ctx, span := tracer.Start(ctx, "PartyResolver.Logout")
	defer span.End()

	claims := ParseJWT(token)
	if key := Key(claims); key != "" {
		if err := r.store.ClearSelectedParty(ctx, key); err != nil {
			return "", fmt.Errorf("clear party: %w", err)
		}
		r.logger.Info("session logged out", zap.String("session", key))
	}
	return r.logoutURL, nil
}

// PartyLoading reports whether a resolution is in flight for the session.
func (r *PartyResolver) PartyLoading(token string) bool {
	return r.store.PartyLoading(Key(ParseJWT(token)))
}

func (r *PartyResolver) clear(ctx context.Context, key string) {
	if err := r.store.ClearSelectedParty(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("failed to clear cached party", zap.String("session", key), zap.Error(err))
	}
}
