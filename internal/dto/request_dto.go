package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateRequestRequest struct {
	Descripcion string          `json:"descripcion" validate:"required,min=5"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Currency    string          `json:"currency"    validate:"required,oneof=USD EUR USDT"`
	// Draft=true keeps the request editable; false submits it immediately
	Draft bool `json:"draft"`
}

// UpdateRequestRequest covers the importer's limited edits while DRAFT.
type UpdateRequestRequest struct {
	Descripcion string           `json:"descripcion" validate:"omitempty,min=5"`
	Amount      *decimal.Decimal `json:"amount"      validate:"omitempty"`
	Currency    string           `json:"currency"    validate:"omitempty,oneof=USD EUR USDT"`
}

// AdminUpdateRequestRequest covers status, assignment and review notes.
type AdminUpdateRequestRequest struct {
	Status       string  `json:"status"         validate:"omitempty,oneof=PENDING IN_REVIEW APPROVED REJECTED CANCELLED COMPLETED"`
	AssignedToID *string `json:"assigned_to_id" validate:"omitempty,uuid"`
	ReviewNotes  *string `json:"review_notes"`
}

type RequestFilter struct {
	Status string
	Page   int
	Limit  int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RequestResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	CompanyID      string          `json:"company_id"`
	Descripcion    string          `json:"descripcion"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	RejectionCount int             `json:"rejection_count"`
	ReviewNotes    *string         `json:"review_notes"`
	AssignedToID   *string         `json:"assigned_to_id"`
	CreatedAt      string          `json:"created_at"`
}

type RequestListResponse struct {
	Data  []RequestResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
