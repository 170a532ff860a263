package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message created by the notification worker.
// Delivery is best-effort: the originating mutation never waits on it.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo   string    `gorm:"type:varchar(40);not null"`
	Titulo string    `gorm:"not null"`
	Cuerpo string    `gorm:"type:text;not null"`
	// EntityRef points back to the triggering entity, e.g. "quotation:<uuid>"
	EntityRef *string `gorm:"type:varchar(80)"`
	Leida     bool    `gorm:"not null;default:false;index"`
	CreatedAt time.Time
}
