package repository

import (
	"context"

	"mercury/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditLog) error
	CreateTx(tx *gorm.DB, e *model.AuditLog) error
	ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]model.AuditLog, error)
	List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, e *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) CreateTx(tx *gorm.DB, e *model.AuditLog) error {
	return tx.Create(e).Error
}

func (r *auditRepo) ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at ASC").Find(&entries).Error
	return entries, err
}

func (r *auditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	var entries []model.AuditLog
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}
