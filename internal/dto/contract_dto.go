package dto

import "github.com/shopspring/decimal"

type ContractResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	QuotationID string          `json:"quotation_id"`
	RequestID   string          `json:"request_id"`
	CompanyID   string          `json:"company_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	SignedAt    *string         `json:"signed_at"`
	CreatedAt   string          `json:"created_at"`
}

type ContractListResponse struct {
	Data  []ContractResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
