package repository

import (
	"context"
	"time"

	"mercury/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuotationRepository interface {
	Create(ctx context.Context, q *model.Quotation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error)
	// FindByIDForUpdate takes a row lock so remaining-amount and
	// rejection-counter checks are serialized with the write.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Quotation, error)
	Update(ctx context.Context, q *model.Quotation) error
	UpdateTx(tx *gorm.DB, q *model.Quotation) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Quotation, error)
	ListAccepted(ctx context.Context) ([]model.Quotation, error)
	CountRejectedByRequestTx(tx *gorm.DB, requestID uuid.UUID) (int64, error)
	// ExpireOverdue flips SENT quotations past validUntil to EXPIRED and
	// returns how many rows changed (used by the expiry sweeper).
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	NextCode(ctx context.Context) (string, error)
	DB() *gorm.DB
}

type quotationRepo struct{ db *gorm.DB }

func NewQuotationRepository(db *gorm.DB) QuotationRepository { return &quotationRepo{db: db} }

func (r *quotationRepo) DB() *gorm.DB { return r.db }

func (r *quotationRepo) Create(ctx context.Context, q *model.Quotation) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *quotationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	var q model.Quotation
	err := r.db.WithContext(ctx).Preload("Request").First(&q, id).Error
	return &q, err
}

func (r *quotationRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Quotation, error) {
	var q model.Quotation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, id).Error
	return &q, err
}

func (r *quotationRepo) Update(ctx context.Context, q *model.Quotation) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *quotationRepo) UpdateTx(tx *gorm.DB, q *model.Quotation) error {
	return tx.Save(q).Error
}

func (r *quotationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Quotation{}, id).Error
}

func (r *quotationRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Quotation, error) {
	var quotations []model.Quotation
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).Order("created_at ASC").Find(&quotations).Error
	return quotations, err
}

func (r *quotationRepo) ListAccepted(ctx context.Context) ([]model.Quotation, error) {
	var quotations []model.Quotation
	err := r.db.WithContext(ctx).Where("status = ?", model.QuotationAccepted).Order("responded_at ASC").Find(&quotations).Error
	return quotations, err
}

func (r *quotationRepo) CountRejectedByRequestTx(tx *gorm.DB, requestID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Quotation{}).
		Where("request_id = ? AND status = ?", requestID, model.QuotationRejected).
		Count(&n).Error
	return n, err
}

func (r *quotationRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Quotation{}).
		Where("status = ? AND valid_until < ?", model.QuotationSent, now).
		Update("status", model.QuotationExpired)
	return res.RowsAffected, res.Error
}

func (r *quotationRepo) NextCode(ctx context.Context) (string, error) {
	return nextCode(r.db.WithContext(ctx), "quotations_code_seq", "COT")
}
