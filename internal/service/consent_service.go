package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/port"

	"go.uber.org/zap"
)

// ============================================================
// TCAgreement: terms-of-service gate of one session
// ============================================================

// TCAgreement tracks whether the session has accepted the current terms.
type TCAgreement struct {
	api    port.ConsentAPI
	logger *zap.Logger

	mu              sync.Mutex
	loaded          bool
	accepted        *bool
	firstAcceptance bool
	versionID       string
}

// NewTCAgreement creates an agreement whose state is unknown until Load.
func NewTCAgreement(api port.ConsentAPI, logger *zap.Logger) *TCAgreement {
	return &TCAgreement{api: api, logger: logger}
}

// Load fetches the pending consent. A pending version means the terms are
// not accepted. On failure the gate stays closed and the error is returned.
func (a *TCAgreement) Load(ctx context.Context) error {
	consent, err := a.api.GetPortalConsent(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.accepted = boolPtr(false)
		a.loaded = false
		a.logger.Warn("portal consent fetch failed, gate closed", zap.Error(err))
		return fmt.Errorf("portal consent fetch: %w", err)
	}

	a.loaded = true
	a.versionID = consent.VersionID
	a.firstAcceptance = consent.FirstAcceptance
	a.accepted = boolPtr(consent.VersionID == "")
	return nil
}

// Loaded reports whether a Load has succeeded.
func (a *TCAgreement) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// State returns a snapshot of the gate.
func (a *TCAgreement) State() domain.TOSState {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := domain.TOSState{FirstAcceptance: a.firstAcceptance}
	if a.accepted != nil {
		st.IsTOSAccepted = boolPtr(*a.accepted)
	}
	return st
}

// AcceptTOS submits the pending version. The state changes only when the
// backend accepts it.
func (a *TCAgreement) AcceptTOS(ctx context.Context) error {
	a.mu.Lock()
	versionID := a.versionID
	a.mu.Unlock()

	if versionID == "" {
		if a.Loaded() {
			return nil
		}
		return &domain.ErrValidation{Field: "versionId", Message: "no pending consent loaded"}
	}

	if err := a.api.SavePortalConsent(ctx, versionID); err != nil {
		a.logger.Warn("portal consent save failed",
			zap.String("version_id", versionID),
			zap.Error(err),
		)
		return fmt.Errorf("portal consent save: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.accepted = boolPtr(true)
	a.versionID = ""
	return nil
}

func boolPtr(b bool) *bool { return &b }

// ============================================================
// ConsentService: one agreement per session
// ============================================================

// ConsentService keeps the TCAgreement of each session.
type ConsentService struct {
	api        port.ConsentAPI
	agreements port.Cache[*TCAgreement]
	alerts     port.AlertDispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	mu         sync.Mutex
}

// NewConsentService creates the consent service with all dependencies injected.
func NewConsentService(
	api port.ConsentAPI,
	agreements port.Cache[*TCAgreement],
	alerts port.AlertDispatcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ConsentService {
	return &ConsentService{
		api:        api,
		agreements: agreements,
		alerts:     alerts,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *ConsentService) agreement(ctx context.Context) (*TCAgreement, error) {
	key, err := sessionScope(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.agreements.Get(key); ok {
		return a, nil
	}
	a := NewTCAgreement(s.api, s.logger)
	s.agreements.Set(key, a)
	return a, nil
}

// State returns the gate of the calling session, loading it on first use.
// A failed load returns the closed gate together with the error.
func (s *ConsentService) State(ctx context.Context) (domain.TOSState, error) {
	ctx, span := tracer.Start(ctx, "ConsentService.State")
	defer span.End()

	a, err := s.agreement(ctx)
	if err != nil {
		return domain.TOSState{}, err
	}
	if a.Loaded() {
		s.metrics.IncrCacheHit("consent")
		return a.State(), nil
	}
	s.metrics.IncrCacheMiss("consent")

	if err := a.Load(ctx); err != nil {
		s.dispatch(ctx, "consent.load", err)
		return a.State(), err
	}
	return a.State(), nil
}

// Accept accepts the pending terms for the calling session.
func (s *ConsentService) Accept(ctx context.Context) (domain.TOSState, error) {
	ctx, span := tracer.Start(ctx, "ConsentService.Accept")
	defer span.End()

	a, err := s.agreement(ctx)
	if err != nil {
		return domain.TOSState{}, err
	}
	if !a.Loaded() {
		if err := a.Load(ctx); err != nil {
			s.dispatch(ctx, "consent.load", err)
			return a.State(), err
		}
	}
	if err := a.AcceptTOS(ctx); err != nil {
		s.dispatch(ctx, "consent.accept", err)
		return a.State(), err
	}
	s.logger.Info("terms of service accepted")
	return a.State(), nil
}

func (s *ConsentService) dispatch(ctx context.Context, component string, err error) {
	s.alerts.Dispatch(ctx, domain.Alert{
		ID:          component,
		Title:       domain.AlertGenericTitle,
		Description: domain.AlertGenericDescription,
		Component:   component,
		Err:         err,
	})
}
