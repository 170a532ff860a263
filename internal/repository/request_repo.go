package repository

import (
	"context"

	"mercury/internal/dto"
	"mercury/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestRepository interface {
	Create(ctx context.Context, rq *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	Update(ctx context.Context, rq *model.Request) error
	UpdateTx(tx *gorm.DB, rq *model.Request) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List scopes to a company when companyID is non-nil (importer view).
	List(ctx context.Context, companyID *uuid.UUID, filter dto.RequestFilter) ([]model.Request, int64, error)
	NextCode(ctx context.Context) (string, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type requestRepo struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) RequestRepository { return &requestRepo{db: db} }

func (r *requestRepo) DB() *gorm.DB { return r.db }

func (r *requestRepo) Create(ctx context.Context, rq *model.Request) error {
	return r.db.WithContext(ctx).Create(rq).Error
}

func (r *requestRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var rq model.Request
	err := r.db.WithContext(ctx).Preload("Company").Preload("Quotations").First(&rq, id).Error
	return &rq, err
}

func (r *requestRepo) Update(ctx context.Context, rq *model.Request) error {
	return r.db.WithContext(ctx).Save(rq).Error
}

func (r *requestRepo) UpdateTx(tx *gorm.DB, rq *model.Request) error {
	return tx.Save(rq).Error
}

func (r *requestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Request{}, id).Error
}

func (r *requestRepo) List(ctx context.Context, companyID *uuid.UUID, filter dto.RequestFilter) ([]model.Request, int64, error) {
	var requests []model.Request
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Request{})
	if companyID != nil {
		q = q.Where("company_id = ?", *companyID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&requests).Error
	return requests, total, err
}

// NextCode draws from a PostgreSQL sequence for atomic code generation.
func (r *requestRepo) NextCode(ctx context.Context) (string, error) {
	return nextCode(r.db.WithContext(ctx), "requests_code_seq", "REQ")
}
