package repository

import (
	"context"

	"mercury/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreateTx(tx *gorm.DB, p *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// FindOpenByContract returns the contract's non-cancelled unreviewed
	// payment, if any — the guard against double proof uploads.
	FindOpenByContract(ctx context.Context, contractID uuid.UUID) (*model.Payment, error)
	UpdateTx(tx *gorm.DB, p *model.Payment) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Payment, error)
	ListPendingReview(ctx context.Context) ([]model.Payment, error)
	NextCode(ctx context.Context) (string, error)
	DB() *gorm.DB
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) DB() *gorm.DB { return r.db }

func (r *paymentRepo) CreateTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *paymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Preload("Contract").Preload("Documents").First(&p, id).Error
	return &p, err
}

func (r *paymentRepo) FindOpenByContract(ctx context.Context, contractID uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND status NOT IN ?", contractID,
			[]model.PaymentStatus{model.PaymentCompleted, model.PaymentCancelled}).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) UpdateTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Save(p).Error
}

func (r *paymentRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).Order("created_at ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) ListPendingReview(ctx context.Context) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PaymentPending).
		Preload("Contract").
		Order("created_at ASC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) NextCode(ctx context.Context) (string, error) {
	return nextCode(r.db.WithContext(ctx), "payments_code_seq", "PAG")
}
