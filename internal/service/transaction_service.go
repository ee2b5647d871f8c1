package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/port"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/workflow"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TransactionRow is one table row with its display status and actions.
type TransactionRow struct {
	domain.MerchantTransaction
	Display         domain.StatusDisplay `json:"display"`
	Actions         []workflow.Action    `json:"actions"`
	EffectiveAmount string               `json:"effectiveAmountLabel"`
	RewardAmount    string               `json:"rewardAmountLabel"`
}

// TransactionsView is one page of the transactions table.
type TransactionsView struct {
	Content       []TransactionRow `json:"content"`
	PageNo        int              `json:"pageNo"`
	PageSize      int              `json:"pageSize"`
	TotalElements int              `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
	HasNext       bool             `json:"hasNext"`
	HasPrevious   bool             `json:"hasPrevious"`
}

// CancelResult tells the portal what happened on the cancel endpoint.
// Reload asks the portal to refetch the table.
type CancelResult struct {
	Prompt    *workflow.CancelPrompt `json:"prompt,omitempty"`
	Cancelled bool                   `json:"cancelled"`
	Reload    bool                   `json:"reload"`
}

// TransactionService serves the transactions table and its row actions.
type TransactionService struct {
	fetcher  port.TransactionsFetcher
	deleter  port.TransactionDeleter
	creator  port.TransactionCreator
	alerts   port.AlertDispatcher
	pages    port.Cache[any]
	linkHost string
	location *time.Location
	now      func() time.Time
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewTransactionService creates the transactions service with all dependencies injected.
func NewTransactionService(
	fetcher port.TransactionsFetcher,
	deleter port.TransactionDeleter,
	creator port.TransactionCreator,
	alerts port.AlertDispatcher,
	pages port.Cache[any],
	magicLinkDomain string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		fetcher:  fetcher,
		deleter:  deleter,
		creator:  creator,
		alerts:   alerts,
		pages:    pages,
		linkHost: magicLinkDomain,
		location: workflow.RomeLocation(),
		now:      time.Now,
		metrics:  metrics,
		logger:   logger,
	}
}

func pagePrefix(ctx context.Context, initiativeID string) (string, error) {
	scope, err := merchantScope(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("trx:%s:%s:", scope, initiativeID), nil
}

// ListTransactions returns a page of the given variant. Pages are cached
// until a mutation on the initiative invalidates them.
func (s *TransactionService) ListTransactions(ctx context.Context, variant domain.StatusVariant, f domain.TransactionFilter) (*TransactionsView, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.ListTransactions")
	defer span.End()
	span.SetAttributes(
		attribute.String("initiative.id", f.InitiativeID),
		attribute.String("variant", string(variant)),
		attribute.Int("page", f.Page),
	)

	if err := validateFilter(variant, f); err != nil {
		return nil, err
	}

	prefix, err := pagePrefix(ctx, f.InitiativeID)
	if err != nil {
		return nil, err
	}
	cacheKey := fmt.Sprintf("%s%s:%d:%s:%s", prefix, variant, f.Page, f.FiscalCode, f.Status)
	if cached, ok := s.pages.Get(cacheKey); ok {
		if view, ok := cached.(*TransactionsView); ok {
			s.metrics.IncrCacheHit("transactions")
			return view, nil
		}
	}
	s.metrics.IncrCacheMiss("transactions")

	var page *domain.Page[domain.MerchantTransaction]
	if variant == domain.VariantProcessed {
		page, err = s.fetcher.GetProcessedTransactions(ctx, f)
	} else {
		page, err = s.fetcher.GetTransactions(ctx, f)
	}
	if err != nil {
		s.alerts.Dispatch(ctx, domain.Alert{
			ID:          "list-" + f.InitiativeID,
			Title:       domain.AlertGenericTitle,
			Description: domain.AlertGenericDescription,
			Component:   "transactions.list",
			Err:         err,
		})
		return nil, fmt.Errorf("transactions fetch: %w", err)
	}

	view := toView(page)
	s.pages.Set(cacheKey, view)
	return view, nil
}

func validateFilter(variant domain.StatusVariant, f domain.TransactionFilter) error {
	if f.InitiativeID == "" {
		return &domain.ErrValidation{Field: "initiativeId", Message: "is required"}
	}
	if f.Page < 0 {
		return &domain.ErrValidation{Field: "page", Message: "must not be negative"}
	}
	if f.FiscalCode != "" && !domain.IsValidTaxCode(f.FiscalCode) {
		return &domain.ErrValidation{Field: "fiscalCode", Message: "invalid tax code"}
	}
	if f.Status != "" && !domain.IsKnownStatus(variant, f.Status) {
		return &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status '%s'", f.Status)}
	}
	return nil
}

func toView(page *domain.Page[domain.MerchantTransaction]) *TransactionsView {
	rows := make([]TransactionRow, 0, len(page.Content))
	for _, trx := range page.Content {
		actions := make([]workflow.Action, 0, 2)
		if domain.CanAuthorize(trx.Status) {
			actions = append(actions, workflow.ActionAuthorize)
		}
		if domain.CanCancel(trx.Status) {
			actions = append(actions, workflow.ActionCancel)
		}
		rows = append(rows, TransactionRow{
			MerchantTransaction: trx,
			Display:             domain.ClassifyForDisplay(trx.Status),
			Actions:             actions,
			EffectiveAmount:     domain.FormatCents(trx.EffectiveAmount),
			RewardAmount:        domain.FormatCents(trx.RewardAmount),
		})
	}
	return &TransactionsView{
		Content:       rows,
		PageNo:        page.PageNo,
		PageSize:      page.PageSize,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		HasNext:       page.HasNext(),
		HasPrevious:   page.HasPrevious(),
	}
}

// Invalidate drops every cached page of the initiative for the caller.
func (s *TransactionService) Invalidate(ctx context.Context, initiativeID string) error {
	prefix, err := pagePrefix(ctx, initiativeID)
	if err != nil {
		return err
	}
	n := s.pages.DeletePrefix(prefix)
	s.logger.Debug("transaction pages invalidated",
		zap.String("initiative_id", initiativeID),
		zap.Int("entries", n),
	)
	return nil
}

// CreateTransaction opens a discount transaction for amount, a euro string
// such as "12,50".
func (s *TransactionService) CreateTransaction(ctx context.Context, initiativeID, amount, mcc string) (*domain.TransactionResponse, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.CreateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("initiative.id", initiativeID))

	cents, err := domain.ParseEuroAmount(amount)
	if err != nil {
		return nil, err
	}

	req := &domain.CreateTransactionRequest{
		AmountCents:  cents,
		IDTrxIssuer:  uuid.NewString(),
		InitiativeID: initiativeID,
		TrxDate:      s.now().UTC(),
		MCC:          mcc,
	}
	resp, err := s.creator.CreateTransaction(ctx, req)
	if err != nil {
		s.metrics.IncrTransactionAction("create", "error")
		s.alerts.Dispatch(ctx, domain.Alert{
			ID:          "create-" + req.IDTrxIssuer,
			Title:       domain.AlertGenericTitle,
			Description: domain.AlertGenericDescription,
			Component:   "transactions.create",
			Err:         err,
		})
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	s.metrics.IncrTransactionAction("create", "ok")
	_ = s.Invalidate(ctx, initiativeID)

	s.logger.Info("transaction created",
		zap.String("initiative_id", initiativeID),
		zap.String("trx_id", resp.ID),
		zap.Int64("amount_cents", cents),
	)
	return resp, nil
}

func (s *TransactionService) row(initiativeID string, trx domain.MerchantTransaction) *workflow.Row {
	return workflow.NewRow(initiativeID, trx, workflow.Deps{
		Deleter:         s.deleter,
		Invalidator:     s,
		Alerts:          s.alerts,
		MagicLinkDomain: s.linkHost,
		Location:        s.location,
		Logger:          s.logger,
	})
}

// maxLookupPages bounds how many backend pages a row lookup scans per variant.
const maxLookupPages = 50

// lookup fetches the current backend record of trxID. Row actions are
// always gated on this record, never on data sent by the portal. In-progress
// pages are scanned first, then processed ones.
func (s *TransactionService) lookup(ctx context.Context, initiativeID, trxID string) (domain.MerchantTransaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.lookup")
	defer span.End()
	span.SetAttributes(attribute.String("trx.id", trxID))

	if initiativeID == "" || trxID == "" {
		return domain.MerchantTransaction{}, &domain.ErrValidation{Field: "trxId", Message: "is required"}
	}
	if _, err := merchantScope(ctx); err != nil {
		return domain.MerchantTransaction{}, err
	}

	fetchers := []func(context.Context, domain.TransactionFilter) (*domain.Page[domain.MerchantTransaction], error){
		s.fetcher.GetTransactions,
		s.fetcher.GetProcessedTransactions,
	}
	for _, fetch := range fetchers {
		for p := 0; p < maxLookupPages; p++ {
			page, err := fetch(ctx, domain.TransactionFilter{InitiativeID: initiativeID, Page: p})
			if err != nil {
				return domain.MerchantTransaction{}, fmt.Errorf("transaction lookup: %w", err)
			}
			for _, trx := range page.Content {
				if trx.TrxID == trxID {
					return trx, nil
				}
			}
			if p+1 >= page.TotalPages {
				break
			}
		}
	}
	return domain.MerchantTransaction{}, &domain.ErrNotFound{Resource: "transaction", ID: trxID}
}

// Authorize returns the authorize modal content of trxID.
func (s *TransactionService) Authorize(ctx context.Context, initiativeID, trxID string) (*workflow.AuthorizationDetails, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.Authorize")
	defer span.End()
	span.SetAttributes(attribute.String("trx.id", trxID))

	trx, err := s.lookup(ctx, initiativeID, trxID)
	if err != nil {
		return nil, err
	}
	row := s.row(initiativeID, trx)
	if err := row.OpenMenu(); err != nil {
		s.metrics.IncrTransactionAction("authorize", "rejected")
		return nil, err
	}
	details, err := row.SelectAuthorize()
	if err != nil {
		s.metrics.IncrTransactionAction("authorize", "rejected")
		return nil, err
	}
	s.metrics.IncrTransactionAction("authorize", "ok")
	return details, nil
}

// AuthorizationQRCode renders the magic link of trxID as a PNG and returns
// it with its download file name.
func (s *TransactionService) AuthorizationQRCode(ctx context.Context, initiativeID, trxID string, size int) ([]byte, string, error) {
	details, err := s.Authorize(ctx, initiativeID, trxID)
	if err != nil {
		return nil, "", err
	}
	raw, err := workflow.RenderQRCode(details.MagicLink, size)
	if err != nil {
		return nil, "", err
	}
	return raw, workflow.QRCodeFilename(details.TrxCode), nil
}

// Cancel runs the cancel flow of trxID. Without confirm it only returns the
// confirmation prompt. With confirm it deletes the transaction and, on
// success, invalidates the initiative's pages.
func (s *TransactionService) Cancel(ctx context.Context, initiativeID, trxID string, confirm bool) (*CancelResult, error) {
	ctx, span := tracer.Start(ctx, "TransactionService.Cancel")
	defer span.End()
	span.SetAttributes(
		attribute.String("trx.id", trxID),
		attribute.Bool("confirm", confirm),
	)

	trx, err := s.lookup(ctx, initiativeID, trxID)
	if err != nil {
		return nil, err
	}
	row := s.row(initiativeID, trx)
	if err := row.OpenMenu(); err != nil {
		s.metrics.IncrTransactionAction("cancel", "rejected")
		return nil, err
	}
	prompt, err := row.SelectCancel()
	if err != nil {
		s.metrics.IncrTransactionAction("cancel", "rejected")
		return nil, err
	}
	if !confirm {
		return &CancelResult{Prompt: prompt}, nil
	}

	if err := row.ConfirmCancel(ctx); err != nil {
		s.metrics.IncrTransactionAction("cancel", "error")
		return nil, fmt.Errorf("cancel transaction: %w", err)
	}
	s.metrics.IncrTransactionAction("cancel", "ok")
	return &CancelResult{Cancelled: true, Reload: true}, nil
}
