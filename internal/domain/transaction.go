package domain

import "time"

// ============================================================
// Merchant transactions
// ============================================================

// TransactionStatus is the raw status of a discount transaction.
type TransactionStatus string

// Pre-processing statuses.
const (
	StatusCreated                TransactionStatus = "CREATED"
	StatusIdentified             TransactionStatus = "IDENTIFIED"
	StatusAuthorizationRequested TransactionStatus = "AUTHORIZATION_REQUESTED"
	StatusAuthorized             TransactionStatus = "AUTHORIZED"
	StatusRejected               TransactionStatus = "REJECTED"
)

// Post-processing statuses. Both are terminal.
const (
	StatusRewarded  TransactionStatus = "REWARDED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// MerchantTransaction is a single discount transaction row.
type MerchantTransaction struct {
	TrxID                string            `json:"trxId"`
	TrxCode              string            `json:"trxCode"`
	FiscalCode           string            `json:"fiscalCode"`
	EffectiveAmount      int64             `json:"effectiveAmount"`
	RewardAmount         int64             `json:"rewardAmount"`
	Status               TransactionStatus `json:"status"`
	TrxDate              time.Time         `json:"trxDate"`
	UpdateDate           time.Time         `json:"updateDate"`
	TrxExpirationMinutes int               `json:"trxExpirationMinutes"`
	QRCodePngURL         string            `json:"qrcodePngUrl,omitempty"`
	QRCodeTxtURL         string            `json:"qrcodeTxtUrl,omitempty"`
}

// TransactionFilter narrows a transactions page request.
type TransactionFilter struct {
	InitiativeID string
	Page         int
	FiscalCode   string
	Status       TransactionStatus
}

// CreateTransactionRequest is sent to the payment backend.
type CreateTransactionRequest struct {
	AmountCents  int64     `json:"amountCents"`
	IDTrxIssuer  string    `json:"idTrxIssuer"`
	InitiativeID string    `json:"initiativeId"`
	TrxDate      time.Time `json:"trxDate"`
	MCC          string    `json:"mcc,omitempty"`
}

// TransactionResponse is returned by the payment backend after creation.
type TransactionResponse struct {
	ID                   string            `json:"id"`
	TrxCode              string            `json:"trxCode"`
	InitiativeID         string            `json:"initiativeId"`
	MerchantID           string            `json:"merchantId"`
	IDTrxIssuer          string            `json:"idTrxIssuer"`
	AmountCents          int64             `json:"amountCents"`
	TrxDate              time.Time         `json:"trxDate"`
	TrxExpirationMinutes int               `json:"trxExpirationMinutes"`
	Status               TransactionStatus `json:"status"`
	QRCodePngURL         string            `json:"qrcodePngUrl,omitempty"`
	QRCodeTxtURL         string            `json:"qrcodeTxtUrl,omitempty"`
}
