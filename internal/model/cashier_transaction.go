package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashierTransaction is one cashier's claim against an accepted quotation's
// remaining Bs amount, executed against an assigned bank account.
// Invariant: the sum of AssignedAmountBs over non-cancelled transactions of a
// quotation never exceeds the quotation's TotalInBs, and a cashier's
// allocations on one account within one calendar day never exceed that
// account's daily limit. Both sums are checked under a row lock on the
// quotation (see CashierService.Participate).
type CashierTransaction struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code             string    `gorm:"uniqueIndex;not null"`
	QuotationID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CashierID        uuid.UUID `gorm:"type:uuid;not null;index"`
	CashierAccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	AssignedAmountBs      decimal.Decimal `gorm:"type:decimal(16,2);not null;column:assigned_amount_bs"`
	SuggestedExchangeRate decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	// ExpectedUsdt = AssignedAmountBs / quotation.ExchangeRate
	ExpectedUsdt  decimal.Decimal  `gorm:"type:decimal(16,2);not null;column:expected_usdt"`
	DeliveredUsdt *decimal.Decimal `gorm:"type:decimal(16,2);column:delivered_usdt"`
	Status        CashierTxStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notas         *string          `gorm:"type:text"`
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Quotation *Quotation      `gorm:"foreignKey:QuotationID"`
	Cashier   *User           `gorm:"foreignKey:CashierID"`
	Account   *CashierAccount `gorm:"foreignKey:CashierAccountID"`
}
