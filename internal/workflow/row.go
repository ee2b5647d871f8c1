// Package workflow drives the per-row action menu of the transactions table:
// the authorize modal, the cancel confirmation and the cancel mutation.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("workflow")

// State is the UI state of one transaction row.
type State string

const (
	MenuClosed         State = "MenuClosed"
	MenuOpen           State = "MenuOpen"
	AuthorizeModalOpen State = "AuthorizeModalOpen"
	CancelModalOpen    State = "CancelModalOpen"
)

// Action is an entry of the row menu.
type Action string

const (
	ActionAuthorize Action = "authorize"
	ActionCancel    Action = "cancel"
)

// Confirmation copy of the cancel modal.
const (
	CancelTitleKey             = "pages.initiativeDiscounts.cancelTransaction.title"
	CancelConfirmKey           = "pages.initiativeDiscounts.cancelTransaction.description"
	CancelConfirmAuthorizedKey = "pages.initiativeDiscounts.cancelTransaction.authorizedDescription"
	cancelAlertComponent       = "transactions.cancel"
)

// Deps are the collaborators shared by all rows of a table.
type Deps struct {
	Deleter         port.TransactionDeleter
	Invalidator     port.Invalidator
	Alerts          port.AlertDispatcher
	MagicLinkDomain string
	Location        *time.Location
	Logger          *zap.Logger
}

// CancelPrompt is the content of the cancel confirmation modal.
type CancelPrompt struct {
	TrxID           string `json:"trxId"`
	TitleKey        string `json:"titleKey"`
	ConfirmationKey string `json:"confirmationKey"`
}

// Row is the action state of one transaction. Rows never share state.
type Row struct {
	initiativeID string
	trx          domain.MerchantTransaction
	state        State
	deps         Deps
}

// NewRow returns a row in MenuClosed.
func NewRow(initiativeID string, trx domain.MerchantTransaction, deps Deps) *Row {
	if deps.Location == nil {
		deps.Location = RomeLocation()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Row{initiativeID: initiativeID, trx: trx, state: MenuClosed, deps: deps}
}

// State returns the current state.
func (r *Row) State() State { return r.state }

// Transaction returns the row's transaction.
func (r *Row) Transaction() domain.MerchantTransaction { return r.trx }

// MenuEntries lists the actions allowed for the transaction status.
func (r *Row) MenuEntries() []Action {
	entries := make([]Action, 0, 2)
	if domain.CanAuthorize(r.trx.Status) {
		entries = append(entries, ActionAuthorize)
	}
	if domain.CanCancel(r.trx.Status) {
		entries = append(entries, ActionCancel)
	}
	return entries
}

// OpenMenu opens the row menu. Rows without actions have no menu.
func (r *Row) OpenMenu() error {
	if r.state != MenuClosed || len(r.MenuEntries()) == 0 {
		return r.invalid("openMenu")
	}
	r.state = MenuOpen
	return nil
}

// CloseMenu dismisses the menu without choosing an action.
func (r *Row) CloseMenu() error {
	if r.state != MenuOpen {
		return r.invalid("closeMenu")
	}
	r.state = MenuClosed
	return nil
}

// SelectAuthorize opens the authorize modal and returns its content.
func (r *Row) SelectAuthorize() (*AuthorizationDetails, error) {
	if r.state != MenuOpen || !domain.CanAuthorize(r.trx.Status) {
		return nil, r.invalid(string(ActionAuthorize))
	}
	if err := authorizable(r.trx); err != nil {
		return nil, err
	}
	details := NewAuthorizationDetails(r.trx, r.deps.MagicLinkDomain, r.deps.Location)
	r.state = AuthorizeModalOpen
	return details, nil
}

// SelectCancel opens the cancel confirmation modal.
func (r *Row) SelectCancel() (*CancelPrompt, error) {
	if r.state != MenuOpen || !domain.CanCancel(r.trx.Status) {
		return nil, r.invalid(string(ActionCancel))
	}
	key := CancelConfirmKey
	if r.trx.Status == domain.StatusAuthorized {
		key = CancelConfirmAuthorizedKey
	}
	r.state = CancelModalOpen
	return &CancelPrompt{TrxID: r.trx.TrxID, TitleKey: CancelTitleKey, ConfirmationKey: key}, nil
}

// CloseModal dismisses either modal with no backend effect.
func (r *Row) CloseModal() error {
	if r.state != AuthorizeModalOpen && r.state != CancelModalOpen {
		return r.invalid("closeModal")
	}
	r.state = MenuClosed
	return nil
}

// ConfirmCancel deletes the transaction once. On success the initiative's
// page snapshots are invalidated. On failure a generic alert is dispatched
// and nothing is invalidated. The row ends in MenuClosed either way.
func (r *Row) ConfirmCancel(ctx context.Context) error {
	if r.state != CancelModalOpen {
		return r.invalid("confirmCancel")
	}
	ctx, span := tracer.Start(ctx, "Row.ConfirmCancel")
	defer span.End()
	span.SetAttributes(
		attribute.String("trx.id", r.trx.TrxID),
		attribute.String("trx.status", string(r.trx.Status)),
	)

	r.state = MenuClosed

	if err := r.deps.Deleter.DeleteTransaction(ctx, r.trx.TrxID); err != nil {
		r.deps.Logger.Warn("cancel transaction failed",
			zap.String("trx_id", r.trx.TrxID),
			zap.Error(err),
		)
		r.deps.Alerts.Dispatch(ctx, domain.Alert{
			ID:          "cancel-" + r.trx.TrxID,
			Title:       domain.AlertGenericTitle,
			Description: domain.AlertGenericDescription,
			Component:   cancelAlertComponent,
			Blocking:    false,
			Err:         err,
		})
		return err
	}

	if err := r.deps.Invalidator.Invalidate(ctx, r.initiativeID); err != nil {
		r.deps.Logger.Warn("invalidate after cancel failed",
			zap.String("initiative_id", r.initiativeID),
			zap.Error(err),
		)
	}
	r.deps.Logger.Info("transaction cancelled", zap.String("trx_id", r.trx.TrxID))
	return nil
}

// authorizable reports whether trx carries what the authorize modal needs.
// A row without a valid code or dates would render a dead link or a
// year one expiration.
func authorizable(trx domain.MerchantTransaction) error {
	switch {
	case !domain.IsValidDiscountCode(trx.TrxCode):
		return &domain.ErrValidation{Field: "trxCode", Message: fmt.Sprintf("must be %d alphanumeric characters", domain.DiscountCodeLength)}
	case trx.TrxDate.IsZero():
		return &domain.ErrValidation{Field: "trxDate", Message: "is required"}
	case trx.TrxExpirationMinutes <= 0:
		return &domain.ErrValidation{Field: "trxExpirationMinutes", Message: "must be positive"}
	}
	return nil
}

func (r *Row) invalid(action string) error {
	return &domain.ErrInvalidTransition{From: string(r.state), Action: action}
}
