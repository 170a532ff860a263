package repository

import (
	"context"
	"time"

	"mercury/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashierRepository interface {
	// Accounts
	CreateAccount(ctx context.Context, a *model.CashierAccount) error
	FindAccountByID(ctx context.Context, id uuid.UUID) (*model.CashierAccount, error)
	UpdateAccount(ctx context.Context, a *model.CashierAccount) error
	ListAccounts(ctx context.Context) ([]model.CashierAccount, error)
	AssignAccount(ctx context.Context, assignment *model.CashierAccountAssignment) error
	IsAssigned(ctx context.Context, cashierID, accountID uuid.UUID) (bool, error)
	ListAssignedAccounts(ctx context.Context, cashierID uuid.UUID) ([]model.CashierAccount, error)

	// Transactions
	CreateTransactionTx(tx *gorm.DB, t *model.CashierTransaction) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.CashierTransaction, error)
	UpdateTransaction(ctx context.Context, t *model.CashierTransaction) error
	ListTransactionsByCashier(ctx context.Context, cashierID uuid.UUID) ([]model.CashierTransaction, error)
	ListTransactionsByQuotation(ctx context.Context, quotationID uuid.UUID) ([]model.CashierTransaction, error)

	// Aggregates — always recomputed from rows; the Tx variants run under the
	// caller's quotation row lock so check and insert are serialized.
	SumAssignedForQuotationTx(tx *gorm.DB, quotationID uuid.UUID) (decimal.Decimal, error)
	SumAssignedForQuotation(ctx context.Context, quotationID uuid.UUID) (decimal.Decimal, error)
	SumAssignedForAccountDayTx(tx *gorm.DB, cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) (decimal.Decimal, error)
	SumAssignedForAccountDay(ctx context.Context, cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) (decimal.Decimal, error)

	NextTransactionCode(ctx context.Context) (string, error)
	DB() *gorm.DB
}

type cashierRepo struct{ db *gorm.DB }

func NewCashierRepository(db *gorm.DB) CashierRepository { return &cashierRepo{db: db} }

func (r *cashierRepo) DB() *gorm.DB { return r.db }

// ── Accounts ─────────────────────────────────────────────────────────────────

func (r *cashierRepo) CreateAccount(ctx context.Context, a *model.CashierAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *cashierRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*model.CashierAccount, error) {
	var a model.CashierAccount
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *cashierRepo) UpdateAccount(ctx context.Context, a *model.CashierAccount) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *cashierRepo) ListAccounts(ctx context.Context) ([]model.CashierAccount, error) {
	var accounts []model.CashierAccount
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&accounts).Error
	return accounts, err
}

func (r *cashierRepo) AssignAccount(ctx context.Context, assignment *model.CashierAccountAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *cashierRepo) IsAssigned(ctx context.Context, cashierID, accountID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CashierAccountAssignment{}).
		Where("cashier_id = ? AND cashier_account_id = ?", cashierID, accountID).
		Count(&n).Error
	return n > 0, err
}

func (r *cashierRepo) ListAssignedAccounts(ctx context.Context, cashierID uuid.UUID) ([]model.CashierAccount, error) {
	var accounts []model.CashierAccount
	err := r.db.WithContext(ctx).
		Joins("JOIN cashier_account_assignments caa ON caa.cashier_account_id = cashier_accounts.id").
		Where("caa.cashier_id = ? AND cashier_accounts.activo = true", cashierID).
		Find(&accounts).Error
	return accounts, err
}

// ── Transactions ─────────────────────────────────────────────────────────────

func (r *cashierRepo) CreateTransactionTx(tx *gorm.DB, t *model.CashierTransaction) error {
	return tx.Create(t).Error
}

func (r *cashierRepo) FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.CashierTransaction, error) {
	var t model.CashierTransaction
	err := r.db.WithContext(ctx).Preload("Quotation").Preload("Account").First(&t, id).Error
	return &t, err
}

func (r *cashierRepo) UpdateTransaction(ctx context.Context, t *model.CashierTransaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *cashierRepo) ListTransactionsByCashier(ctx context.Context, cashierID uuid.UUID) ([]model.CashierTransaction, error) {
	var txs []model.CashierTransaction
	err := r.db.WithContext(ctx).Where("cashier_id = ?", cashierID).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

func (r *cashierRepo) ListTransactionsByQuotation(ctx context.Context, quotationID uuid.UUID) ([]model.CashierTransaction, error) {
	var txs []model.CashierTransaction
	err := r.db.WithContext(ctx).Where("quotation_id = ?", quotationID).Order("created_at ASC").Find(&txs).Error
	return txs, err
}

// ── Aggregates ───────────────────────────────────────────────────────────────

func (r *cashierRepo) SumAssignedForQuotationTx(tx *gorm.DB, quotationID uuid.UUID) (decimal.Decimal, error) {
	return sumAssignedForQuotation(tx, quotationID)
}

func (r *cashierRepo) SumAssignedForQuotation(ctx context.Context, quotationID uuid.UUID) (decimal.Decimal, error) {
	return sumAssignedForQuotation(r.db.WithContext(ctx), quotationID)
}

func sumAssignedForQuotation(db *gorm.DB, quotationID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.Model(&model.CashierTransaction{}).
		Select("SUM(assigned_amount_bs)").
		Where("quotation_id = ? AND status <> ?", quotationID, model.CashierTxCancelled).
		Scan(&sum).Error
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}

func (r *cashierRepo) SumAssignedForAccountDayTx(tx *gorm.DB, cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) (decimal.Decimal, error) {
	return sumAssignedForAccountDay(tx, cashierID, accountID, dayStart, dayEnd)
}

func (r *cashierRepo) SumAssignedForAccountDay(ctx context.Context, cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) (decimal.Decimal, error) {
	return sumAssignedForAccountDay(r.db.WithContext(ctx), cashierID, accountID, dayStart, dayEnd)
}

func sumAssignedForAccountDay(db *gorm.DB, cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.Model(&model.CashierTransaction{}).
		Select("SUM(assigned_amount_bs)").
		Where("cashier_id = ? AND cashier_account_id = ? AND status <> ? AND created_at >= ? AND created_at < ?",
			cashierID, accountID, model.CashierTxCancelled, dayStart, dayEnd).
		Scan(&sum).Error
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}

func (r *cashierRepo) NextTransactionCode(ctx context.Context) (string, error) {
	return nextCode(r.db.WithContext(ctx), "cashier_transactions_code_seq", "TRX")
}
