package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request is a company's ask to import goods or services.
// Lifecycle: DRAFT/PENDING on creation by an importer; admins move it through
// review; APPROVED once a quotation is accepted; CANCELLED automatically after
// the third rejected quotation.
type Request struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string          `gorm:"uniqueIndex;not null"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedByID uuid.UUID       `gorm:"type:uuid;not null"`
	Descripcion string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Currency    string          `gorm:"type:varchar(10);not null;default:'USD'"`
	Status      RequestStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	// RejectionCount mirrors the number of REJECTED quotations; it is updated
	// in the same transaction that rejects a quotation.
	RejectionCount int     `gorm:"not null;default:0"`
	ReviewNotes    *string `gorm:"type:text"`
	AssignedToID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Company    *Company    `gorm:"foreignKey:CompanyID"`
	AssignedTo *User       `gorm:"foreignKey:AssignedToID"`
	Quotations []Quotation `gorm:"foreignKey:RequestID"`
}
