package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract is the binding agreement created from an ACCEPTED quotation.
// One-to-one with the quotation that spawned it; owned by the same company
// as the originating request.
type Contract struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string    `gorm:"uniqueIndex;not null"`
	QuotationID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	RequestID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency    string          `gorm:"type:varchar(10);not null"`
	Status      ContractStatus  `gorm:"type:varchar(30);not null;default:'DRAFT';index"`
	SignedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Quotation *Quotation `gorm:"foreignKey:QuotationID"`
	Company   *Company   `gorm:"foreignKey:CompanyID"`
	Payments  []Payment  `gorm:"foreignKey:ContractID"`
}
