package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/boddenberg/merchant-portal-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/service"
	"github.com/boddenberg/merchant-portal-bfa-go/internal/workflow"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Transactions: /v1/initiatives/{initiativeId}/transactions
// ============================================================

type transactionsQuery struct {
	FiscalCode string `json:"fiscalCode" validate:"omitempty,taxcode"`
	Status     string `json:"status" validate:"omitempty,trxstatus"`
}

func listTransactionsHandler(svc *service.TransactionService, variant domain.StatusVariant, logger *zap.Logger) http.HandlerFunc {
	op := "GET /v1/initiatives/{initiativeId}/transactions"
	if variant == domain.VariantProcessed {
		op += "/processed"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), op)
		defer span.End()

		initiativeID := chi.URLParam(r, "initiativeId")
		span.SetAttributes(attribute.String("initiative.id", initiativeID))

		page, err := parsePage(r)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		q := transactionsQuery{
			FiscalCode: r.URL.Query().Get("fiscalCode"),
			Status:     r.URL.Query().Get("status"),
		}
		if err := validateStruct(q); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}

		view, err := svc.ListTransactions(ctx, variant, domain.TransactionFilter{
			InitiativeID: initiativeID,
			Page:         page,
			FiscalCode:   q.FiscalCode,
			Status:       domain.TransactionStatus(q.Status),
		})
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

type createTransactionBody struct {
	Amount string `json:"amount" validate:"required"`
	MCC    string `json:"mcc" validate:"omitempty,numeric,len=4"`
}

func createTransactionHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/initiatives/{initiativeId}/transactions")
		defer span.End()

		initiativeID := chi.URLParam(r, "initiativeId")
		span.SetAttributes(attribute.String("initiative.id", initiativeID))

		var body createTransactionBody
		if err := decodeJSON(r, &body); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		if err := validateStruct(body); err != nil {
			handleServiceError(w, r, err, logger)
			return
		}

		resp, err := svc.CreateTransaction(ctx, initiativeID, body.Amount, body.MCC)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// actionBody is the optional body of a row action. The row itself is
// always reloaded from the backend by its trxId.
type actionBody struct {
	Confirm bool `json:"confirm"`
}

func decodeAction(r *http.Request) (actionBody, error) {
	var body actionBody
	if r.Body == nil || r.Body == http.NoBody {
		return body, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return body, &domain.ErrValidation{Field: "body", Message: "invalid request body"}
	}
	return body, nil
}

func authorizeHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/initiatives/{initiativeId}/transactions/{trxId}/authorization")
		defer span.End()

		initiativeID := chi.URLParam(r, "initiativeId")
		trxID := chi.URLParam(r, "trxId")
		span.SetAttributes(attribute.String("trx.id", trxID))

		details, err := svc.Authorize(ctx, initiativeID, trxID)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

func qrCodeHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/initiatives/{initiativeId}/transactions/{trxId}/authorization/qrcode")
		defer span.End()

		size := workflow.DefaultQRSize
		if v := r.URL.Query().Get("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 64 || n > 1024 {
				handleServiceError(w, r, &domain.ErrValidation{Field: "size", Message: "must be between 64 and 1024"}, logger)
				return
			}
			size = n
		}

		initiativeID := chi.URLParam(r, "initiativeId")
		trxID := chi.URLParam(r, "trxId")
		span.SetAttributes(attribute.String("trx.id", trxID))

		png, filename, err := svc.AuthorizationQRCode(ctx, initiativeID, trxID, size)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

func cancelHandler(svc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/initiatives/{initiativeId}/transactions/{trxId}/cancel")
		defer span.End()

		initiativeID := chi.URLParam(r, "initiativeId")
		trxID := chi.URLParam(r, "trxId")
		body, err := decodeAction(r)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("trx.id", trxID),
			attribute.Bool("confirm", body.Confirm),
		)

		res, err := svc.Cancel(ctx, initiativeID, trxID, body.Confirm)
		if err != nil {
			handleServiceError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
