package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ParticipateRequest struct {
	CashierAccountID string          `json:"cashier_account_id" validate:"required,uuid"`
	AssignedAmountBs decimal.Decimal `json:"assigned_amount_bs" validate:"required,gt=0"`
	Notas            *string         `json:"notas"`
}

type CompleteTransactionRequest struct {
	DeliveredUsdt decimal.Decimal `json:"delivered_usdt" validate:"required,gt=0"`
	Notas         *string         `json:"notas"`
}

type CreateCashierAccountRequest struct {
	Nombre        string          `json:"nombre"          validate:"required,min=2"`
	Banco         string          `json:"banco"           validate:"required,min=2"`
	AccountNumber string          `json:"account_number"  validate:"required,min=4"`
	DailyLimitBs  decimal.Decimal `json:"daily_limit_bs"  validate:"required,gt=0"`
}

type AssignAccountRequest struct {
	CashierID string `json:"cashier_id" validate:"required,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashierTransactionResponse struct {
	ID                    string           `json:"id"`
	Code                  string           `json:"code"`
	QuotationID           string           `json:"quotation_id"`
	CashierID             string           `json:"cashier_id"`
	CashierAccountID      string           `json:"cashier_account_id"`
	AssignedAmountBs      decimal.Decimal  `json:"assigned_amount_bs"`
	SuggestedExchangeRate decimal.Decimal  `json:"suggested_exchange_rate"`
	ExpectedUsdt          decimal.Decimal  `json:"expected_usdt"`
	DeliveredUsdt         *decimal.Decimal `json:"delivered_usdt"`
	// SlippageUsdt = delivered − expected; derived, only set once completed
	SlippageUsdt *decimal.Decimal `json:"slippage_usdt"`
	Status       string           `json:"status"`
	Notas        *string          `json:"notas"`
	StartedAt    *string          `json:"started_at"`
	CompletedAt  *string          `json:"completed_at"`
	CreatedAt    string           `json:"created_at"`
}

// AvailableQuotationResponse is an accepted quotation a cashier can still
// claim a slice of.
type AvailableQuotationResponse struct {
	QuotationID       string          `json:"quotation_id"`
	Code              string          `json:"code"`
	TotalInBs         decimal.Decimal `json:"total_in_bs"`
	ExchangeRate      decimal.Decimal `json:"exchange_rate"`
	AssignedBs        decimal.Decimal `json:"assigned_bs"`
	RemainingAmountBs decimal.Decimal `json:"remaining_amount_bs"`
}

type CashierAccountResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	Banco         string          `json:"banco"`
	AccountNumber string          `json:"account_number"`
	DailyLimitBs  decimal.Decimal `json:"daily_limit_bs"`
	Activo        bool            `json:"activo"`
}

// DailyUsageResponse reports one account's consumption for a cashier today.
type DailyUsageResponse struct {
	Account          CashierAccountResponse `json:"account"`
	UsedTodayBs      decimal.Decimal        `json:"used_today_bs"`
	RemainingLimitBs decimal.Decimal        `json:"remaining_limit_bs"`
}
