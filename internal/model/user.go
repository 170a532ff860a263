package model

import (
	"time"

	"github.com/google/uuid"
)

// User stores system users with role-based access.
// Role: IMPORTADOR | ADMIN | CAJERO
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          Role      `gorm:"type:varchar(20);not null"`
	// CompanyID binds an IMPORTADOR to their company; nil for ADMIN/CAJERO
	CompanyID *uuid.UUID `gorm:"type:uuid;index"`
	Activo    bool       `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}
