package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashierAccount is a bank account cashiers draw on to buy currency,
// capped by DailyLimitBs per cashier per calendar day.
type CashierAccount struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string          `gorm:"not null"`
	Banco         string          `gorm:"not null"`
	AccountNumber string          `gorm:"uniqueIndex;not null"`
	DailyLimitBs  decimal.Decimal `gorm:"type:decimal(16,2);not null;column:daily_limit_bs"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CashierAccountAssignment grants a cashier the use of an account.
// Participation against an account requires an assignment row.
type CashierAccountAssignment struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashierID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cashier_account"`
	CashierAccountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cashier_account"`
	CreatedAt        time.Time

	Cashier *User           `gorm:"foreignKey:CashierID"`
	Account *CashierAccount `gorm:"foreignKey:CashierAccountID"`
}
