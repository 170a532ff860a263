package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is file metadata for an uploaded blob stored in MinIO.
// Always a child of a company, request, contract or payment — never
// owned independently.
type Document struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Filename string    `gorm:"not null"`
	// ObjectKey is the MinIO object path; URL is the public download URL
	ObjectKey string       `gorm:"not null"`
	URL       string       `gorm:"not null"`
	MimeType  string       `gorm:"type:varchar(100);not null"`
	Size      int64        `gorm:"not null"`
	Tipo      DocumentType `gorm:"type:varchar(40);not null;index"`
	Notas     *string      `gorm:"type:text"`

	CompanyID  *uuid.UUID `gorm:"type:uuid;index"`
	RequestID  *uuid.UUID `gorm:"type:uuid;index"`
	ContractID *uuid.UUID `gorm:"type:uuid;index"`
	PaymentID  *uuid.UUID `gorm:"type:uuid;index"`

	UploadedByID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
}
