package repository

import (
	"context"

	"mercury/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository interface {
	CreateTx(tx *gorm.DB, c *model.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	FindByQuotationID(ctx context.Context, quotationID uuid.UUID) (*model.Contract, error)
	Update(ctx context.Context, c *model.Contract) error
	UpdateTx(tx *gorm.DB, c *model.Contract) error
	List(ctx context.Context, companyID *uuid.UUID, page, limit int) ([]model.Contract, int64, error)
	NextCode(ctx context.Context) (string, error)
	DB() *gorm.DB
}

type contractRepo struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) ContractRepository { return &contractRepo{db: db} }

func (r *contractRepo) DB() *gorm.DB { return r.db }

func (r *contractRepo) CreateTx(tx *gorm.DB, c *model.Contract) error {
	return tx.Create(c).Error
}

func (r *contractRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := r.db.WithContext(ctx).Preload("Quotation").Preload("Company").First(&c, id).Error
	return &c, err
}

func (r *contractRepo) FindByQuotationID(ctx context.Context, quotationID uuid.UUID) (*model.Contract, error) {
	var c model.Contract
	err := r.db.WithContext(ctx).Where("quotation_id = ?", quotationID).First(&c).Error
	return &c, err
}

func (r *contractRepo) Update(ctx context.Context, c *model.Contract) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *contractRepo) UpdateTx(tx *gorm.DB, c *model.Contract) error {
	return tx.Save(c).Error
}

func (r *contractRepo) List(ctx context.Context, companyID *uuid.UUID, page, limit int) ([]model.Contract, int64, error) {
	var contracts []model.Contract
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.Contract{})
	if companyID != nil {
		q = q.Where("company_id = ?", *companyID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&contracts).Error
	return contracts, total, err
}

func (r *contractRepo) NextCode(ctx context.Context) (string, error) {
	return nextCode(r.db.WithContext(ctx), "contracts_code_seq", "CON")
}
