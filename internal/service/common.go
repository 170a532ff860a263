package service

import (
	"context"
	"encoding/json"
	"time"

	"mercury/internal/model"
	"mercury/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Actor is the authenticated caller as seen by the service layer.
// Handlers build it from the JWT claims; services do all ownership and
// role checks against it.
type Actor struct {
	ID        uuid.UUID
	Rol       model.Role
	CompanyID *uuid.UUID
}

// OwnsCompany reports whether the actor belongs to the given company.
func (a Actor) OwnsCompany(companyID uuid.UUID) bool {
	return a.CompanyID != nil && *a.CompanyID == companyID
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// audit writes a workflow audit row. Best-effort outside a transaction:
// a failed audit write is logged, never surfaced.
func audit(ctx context.Context, repo repository.AuditRepository, tx *gorm.DB, actorID *uuid.UUID, action, entity string, entityID uuid.UUID, before, after interface{}) {
	entry := &model.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Before:   snapshot(before),
		After:    snapshot(after),
	}
	var err error
	if tx != nil {
		err = repo.CreateTx(tx, entry)
	} else {
		err = repo.Create(ctx, entry)
	}
	if err != nil {
		log.Error().Err(err).Str("action", action).Str("entity", entity).Msg("audit write failed")
	}
}

func snapshot(v interface{}) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
