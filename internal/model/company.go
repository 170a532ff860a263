package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is an importing business served by the platform.
// Requests, contracts and documents are all company-owned.
type Company struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"not null"`
	NIT          string    `gorm:"uniqueIndex;not null;column:nit"`
	ContactEmail string    `gorm:"not null"`
	Telefono     *string
	Direccion    *string
	Activo       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
