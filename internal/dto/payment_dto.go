package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ReviewPaymentRequest is the admin decision over an uploaded payment proof.
type ReviewPaymentRequest struct {
	Action      string  `json:"action" validate:"required,oneof=APPROVE REJECT MARK_PROVIDER_PAID"`
	ReviewNotes *string `json:"review_notes"`
}

// FinalPaymentRequest records the closing FINAL payment on a contract whose
// provider leg is already settled.
type FinalPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Notas  *string         `json:"notas"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaymentResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	ContractID  string          `json:"contract_id"`
	Tipo        string          `json:"tipo"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	ReviewNotes *string         `json:"review_notes"`
	ReviewedAt  *string         `json:"reviewed_at"`
	CreatedAt   string          `json:"created_at"`
}

// UploadProofResponse is returned after a successful proof upload:
// the created payment, its document and the contract's new status.
type UploadProofResponse struct {
	Payment        PaymentResponse  `json:"payment"`
	Document       DocumentResponse `json:"document"`
	ContractStatus string           `json:"contract_status"`
}

// ReviewPaymentResponse pairs the reviewed payment with the contract status
// the review produced.
type ReviewPaymentResponse struct {
	Payment        PaymentResponse `json:"payment"`
	ContractStatus string          `json:"contract_status"`
}
