package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records every workflow transition: the action, the entity touched
// and small before/after JSON snapshots. Rows are append-only.
type AuditLog struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ActorID  *uuid.UUID `gorm:"type:uuid;index"`
	Action   string     `gorm:"type:varchar(60);not null"`
	Entity   string     `gorm:"type:varchar(40);not null;index"`
	EntityID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Before   []byte     `gorm:"type:jsonb"`
	After    []byte     `gorm:"type:jsonb"`
	CreatedAt time.Time
}
