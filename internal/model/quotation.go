package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quotation is an admin-issued price/terms proposal tied to exactly one
// Request. Several quotations may exist per request (one per proposal cycle);
// only DRAFT/SENT quotations are mutable. A quotation past ValidUntil is
// treated as expired regardless of the stored status.
type Quotation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"uniqueIndex;not null"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency     string          `gorm:"type:varchar(10);not null;default:'USD'"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	// TotalInBs = Amount * ExchangeRate, fixed at issue time
	TotalInBs       decimal.Decimal `gorm:"type:decimal(16,2);not null;column:total_in_bs"`
	ValidUntil      time.Time       `gorm:"not null"`
	Status          QuotationStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Notas           *string         `gorm:"type:text"`
	RejectionReason *string         `gorm:"type:text"`
	SentAt          *time.Time
	RespondedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Request *Request `gorm:"foreignKey:RequestID"`
}

// ExpiredAt reports whether the quotation's validity window has passed at t.
func (q *Quotation) ExpiredAt(t time.Time) bool {
	return t.After(q.ValidUntil)
}
