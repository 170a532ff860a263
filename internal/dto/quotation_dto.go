package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateQuotationRequest struct {
	RequestID    string          `json:"request_id"    validate:"required,uuid"`
	Amount       decimal.Decimal `json:"amount"        validate:"required,gt=0"`
	Currency     string          `json:"currency"      validate:"required,oneof=USD EUR USDT"`
	ExchangeRate decimal.Decimal `json:"exchange_rate" validate:"required,gt=0"`
	// ValidUntil in YYYY-MM-DD; must be at least tomorrow
	ValidUntil string  `json:"valid_until" validate:"required,datetime=2006-01-02"`
	Notas      *string `json:"notas"`
}

type UpdateQuotationRequest struct {
	Amount       *decimal.Decimal `json:"amount"        validate:"omitempty"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate" validate:"omitempty"`
	ValidUntil   string           `json:"valid_until"   validate:"omitempty,datetime=2006-01-02"`
	Notas        *string          `json:"notas"`
}

// RespondQuotationRequest is the importer's accept/reject decision.
type RespondQuotationRequest struct {
	Action string  `json:"action" validate:"required,oneof=ACCEPTED REJECTED"`
	Notes  *string `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type QuotationResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	RequestID       string          `json:"request_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	TotalInBs       decimal.Decimal `json:"total_in_bs"`
	ValidUntil      string          `json:"valid_until"`
	Status          string          `json:"status"`
	Notas           *string         `json:"notas"`
	RejectionReason *string         `json:"rejection_reason"`
	SentAt          *string         `json:"sent_at"`
	RespondedAt     *string         `json:"responded_at"`
	CreatedAt       string          `json:"created_at"`
}

// RespondQuotationResponse returns the quotation together with the request
// status the response produced.
type RespondQuotationResponse struct {
	Quotation     QuotationResponse `json:"quotation"`
	RequestStatus string            `json:"request_status"`
	// RejectionCount after this response (0 when accepted)
	RejectionCount int `json:"rejection_count"`
}
