package repository

import (
	"context"

	"mercury/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *model.Document) error
	CreateTx(tx *gorm.DB, d *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Document, error)
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]model.Document, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Document, error)
}

type documentRepo struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) DocumentRepository { return &documentRepo{db: db} }

func (r *documentRepo) Create(ctx context.Context, d *model.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *documentRepo) CreateTx(tx *gorm.DB, d *model.Document) error {
	return tx.Create(d).Error
}

func (r *documentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var d model.Document
	err := r.db.WithContext(ctx).First(&d, id).Error
	return &d, err
}

func (r *documentRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).Order("created_at ASC").Find(&docs).Error
	return docs, err
}

func (r *documentRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).Order("created_at ASC").Find(&docs).Error
	return docs, err
}

func (r *documentRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).Order("created_at ASC").Find(&docs).Error
	return docs, err
}
