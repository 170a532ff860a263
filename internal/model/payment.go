package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records a money movement tied to a contract:
// the importer's payment-to-platform (PARTIAL/FINAL) backed by a proof
// document. A contract holds at most one non-cancelled unreviewed payment
// at a time.
type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code       string          `gorm:"uniqueIndex;not null"`
	ContractID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo       PaymentType     `gorm:"type:varchar(10);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency   string          `gorm:"type:varchar(10);not null"`
	Status     PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ReviewNotes  *string    `gorm:"type:text"`
	ReviewedAt   *time.Time
	ReviewedByID *uuid.UUID `gorm:"type:uuid"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Contract  *Contract  `gorm:"foreignKey:ContractID"`
	Documents []Document `gorm:"foreignKey:PaymentID"`
}
