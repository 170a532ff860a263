package service

import (
	"context"
	"time"

	"mercury/internal/apierror"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashierService interface {
	// AvailableQuotations lists ACCEPTED quotations whose Bs amount is not
	// fully claimed yet.
	AvailableQuotations(ctx context.Context) ([]dto.AvailableQuotationResponse, error)
	// Participate claims a slice of a quotation's remaining Bs against one
	// of the cashier's assigned accounts. Both the remaining-amount and the
	// daily-limit checks run under a row lock on the quotation, so two
	// concurrent claims can never oversubscribe either budget.
	Participate(ctx context.Context, actor Actor, quotationID uuid.UUID, req dto.ParticipateRequest) (*dto.CashierTransactionResponse, error)
	Start(ctx context.Context, actor Actor, txID uuid.UUID) (*dto.CashierTransactionResponse, error)
	Complete(ctx context.Context, actor Actor, txID uuid.UUID, req dto.CompleteTransactionRequest) (*dto.CashierTransactionResponse, error)
	Cancel(ctx context.Context, actor Actor, txID uuid.UUID) (*dto.CashierTransactionResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.CashierTransactionResponse, error)
	DailyUsage(ctx context.Context, actor Actor) ([]dto.DailyUsageResponse, error)

	// Admin surface
	CreateAccount(ctx context.Context, actor Actor, req dto.CreateCashierAccountRequest) (*dto.CashierAccountResponse, error)
	ListAccounts(ctx context.Context) ([]dto.CashierAccountResponse, error)
	AssignAccount(ctx context.Context, actor Actor, accountID uuid.UUID, req dto.AssignAccountRequest) error
}

type cashierService struct {
	repo          repository.CashierRepository
	quotationRepo repository.QuotationRepository
	auditRepo     repository.AuditRepository
}

func NewCashierService(
	repo repository.CashierRepository,
	quotationRepo repository.QuotationRepository,
	auditRepo repository.AuditRepository,
) CashierService {
	return &cashierService{repo: repo, quotationRepo: quotationRepo, auditRepo: auditRepo}
}

func (s *cashierService) AvailableQuotations(ctx context.Context) ([]dto.AvailableQuotationResponse, error) {
	quotations, err := s.quotationRepo.ListAccepted(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AvailableQuotationResponse, 0, len(quotations))
	for i := range quotations {
		q := &quotations[i]
		assigned, err := s.repo.SumAssignedForQuotation(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		remaining := q.TotalInBs.Sub(assigned)
		if !remaining.IsPositive() {
			continue
		}
		resp = append(resp, dto.AvailableQuotationResponse{
			QuotationID:       q.ID.String(),
			Code:              q.Code,
			TotalInBs:         q.TotalInBs,
			ExchangeRate:      q.ExchangeRate,
			AssignedBs:        assigned,
			RemainingAmountBs: remaining,
		})
	}
	return resp, nil
}

func (s *cashierService) Participate(ctx context.Context, actor Actor, quotationID uuid.UUID, req dto.ParticipateRequest) (*dto.CashierTransactionResponse, error) {
	if !req.AssignedAmountBs.IsPositive() {
		return nil, apierror.Invalid("el monto asignado debe ser mayor a cero")
	}
	accountID, err := uuid.Parse(req.CashierAccountID)
	if err != nil {
		return nil, apierror.Invalid("cashier_account_id invalido")
	}
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, apierror.NotFound("cuenta no encontrada")
	}
	if !account.Activo {
		return nil, apierror.Invalid("la cuenta esta inactiva")
	}
	assigned, err := s.repo.IsAssigned(ctx, actor.ID, accountID)
	if err != nil {
		return nil, err
	}
	if !assigned {
		return nil, apierror.Forbidden("la cuenta no esta asignada al cajero")
	}

	dayStart, dayEnd := today()
	var cashierTx *model.CashierTransaction

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		q, err := s.lockedQuotation(ctx, tx, quotationID)
		if err != nil {
			return apierror.NotFound("cotizacion no encontrada")
		}
		if q.Status != model.QuotationAccepted {
			return apierror.Invalid("la cotizacion no esta aceptada")
		}

		sumQuotation, err := s.sumForQuotation(ctx, tx, q.ID)
		if err != nil {
			return err
		}
		remaining := q.TotalInBs.Sub(sumQuotation)
		if req.AssignedAmountBs.GreaterThan(remaining) {
			return apierror.Conflict("el monto excede el saldo disponible de " + remaining.StringFixed(2) + " Bs")
		}

		sumDay, err := s.sumForAccountDay(ctx, tx, actor.ID, accountID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		limitLeft := account.DailyLimitBs.Sub(sumDay)
		if req.AssignedAmountBs.GreaterThan(limitLeft) {
			return apierror.Conflict("el monto excede el limite diario restante de " + limitLeft.StringFixed(2) + " Bs")
		}

		code, err := s.repo.NextTransactionCode(ctx)
		if err != nil {
			return err
		}
		cashierTx = &model.CashierTransaction{
			Code:                  code,
			QuotationID:           q.ID,
			CashierID:             actor.ID,
			CashierAccountID:      accountID,
			AssignedAmountBs:      req.AssignedAmountBs,
			SuggestedExchangeRate: q.ExchangeRate,
			ExpectedUsdt:          req.AssignedAmountBs.Div(q.ExchangeRate).Round(2),
			Status:                model.CashierTxPending,
			Notas:                 req.Notas,
		}
		if err := s.repo.CreateTransactionTx(orDB(tx, s.repo.DB()), cashierTx); err != nil {
			return err
		}
		audit(ctx, s.auditRepo, tx, &actor.ID, "cashier_tx.create", "cashier_transaction", cashierTx.ID, nil, cashierTx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := cashierTxToResponse(cashierTx)
	return &resp, nil
}

func (s *cashierService) Start(ctx context.Context, actor Actor, txID uuid.UUID) (*dto.CashierTransactionResponse, error) {
	t, err := s.findOwned(ctx, actor, txID)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(model.CashierTxInProgress) {
		return nil, apierror.Invalid("la transaccion no puede iniciarse en estado " + string(t.Status))
	}
	now := time.Now()
	before := *t
	t.Status = model.CashierTxInProgress
	t.StartedAt = &now
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "cashier_tx.start", "cashier_transaction", t.ID, before, t)
	resp := cashierTxToResponse(t)
	return &resp, nil
}

func (s *cashierService) Complete(ctx context.Context, actor Actor, txID uuid.UUID, req dto.CompleteTransactionRequest) (*dto.CashierTransactionResponse, error) {
	t, err := s.findOwned(ctx, actor, txID)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(model.CashierTxCompleted) {
		return nil, apierror.Invalid("la transaccion no puede completarse en estado " + string(t.Status))
	}
	now := time.Now()
	before := *t
	delivered := req.DeliveredUsdt
	t.Status = model.CashierTxCompleted
	t.DeliveredUsdt = &delivered
	t.CompletedAt = &now
	if req.Notas != nil {
		t.Notas = req.Notas
	}
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "cashier_tx.complete", "cashier_transaction", t.ID, before, t)
	resp := cashierTxToResponse(t)
	return &resp, nil
}

// Cancel releases the claimed amount back to the quotation's remaining pool
// (cancelled transactions are excluded from the assigned sums).
func (s *cashierService) Cancel(ctx context.Context, actor Actor, txID uuid.UUID) (*dto.CashierTransactionResponse, error) {
	t, err := s.findOwned(ctx, actor, txID)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(model.CashierTxCancelled) {
		return nil, apierror.Invalid("la transaccion no puede cancelarse en estado " + string(t.Status))
	}
	before := *t
	t.Status = model.CashierTxCancelled
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "cashier_tx.cancel", "cashier_transaction", t.ID, before, t)
	resp := cashierTxToResponse(t)
	return &resp, nil
}

func (s *cashierService) ListMine(ctx context.Context, actor Actor) ([]dto.CashierTransactionResponse, error) {
	txs, err := s.repo.ListTransactionsByCashier(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CashierTransactionResponse, len(txs))
	for i := range txs {
		resp[i] = cashierTxToResponse(&txs[i])
	}
	return resp, nil
}

func (s *cashierService) DailyUsage(ctx context.Context, actor Actor) ([]dto.DailyUsageResponse, error) {
	accounts, err := s.repo.ListAssignedAccounts(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := today()
	resp := make([]dto.DailyUsageResponse, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		used, err := s.repo.SumAssignedForAccountDay(ctx, actor.ID, a.ID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		resp[i] = dto.DailyUsageResponse{
			Account:          accountToResponse(a),
			UsedTodayBs:      used,
			RemainingLimitBs: a.DailyLimitBs.Sub(used),
		}
	}
	return resp, nil
}

func (s *cashierService) CreateAccount(ctx context.Context, actor Actor, req dto.CreateCashierAccountRequest) (*dto.CashierAccountResponse, error) {
	account := &model.CashierAccount{
		Nombre:        req.Nombre,
		Banco:         req.Banco,
		AccountNumber: req.AccountNumber,
		DailyLimitBs:  req.DailyLimitBs,
		Activo:        true,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "cashier_account.create", "cashier_account", account.ID, nil, account)
	resp := accountToResponse(account)
	return &resp, nil
}

func (s *cashierService) ListAccounts(ctx context.Context) ([]dto.CashierAccountResponse, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CashierAccountResponse, len(accounts))
	for i := range accounts {
		resp[i] = accountToResponse(&accounts[i])
	}
	return resp, nil
}

func (s *cashierService) AssignAccount(ctx context.Context, actor Actor, accountID uuid.UUID, req dto.AssignAccountRequest) error {
	cashierID, err := uuid.Parse(req.CashierID)
	if err != nil {
		return apierror.Invalid("cashier_id invalido")
	}
	if _, err := s.repo.FindAccountByID(ctx, accountID); err != nil {
		return apierror.NotFound("cuenta no encontrada")
	}
	assignment := &model.CashierAccountAssignment{
		CashierID:        cashierID,
		CashierAccountID: accountID,
	}
	if err := s.repo.AssignAccount(ctx, assignment); err != nil {
		return apierror.Conflict("la cuenta ya esta asignada al cajero")
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "cashier_account.assign", "cashier_account", accountID, nil, assignment)
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *cashierService) findOwned(ctx context.Context, actor Actor, txID uuid.UUID) (*model.CashierTransaction, error) {
	t, err := s.repo.FindTransactionByID(ctx, txID)
	if err != nil {
		return nil, apierror.NotFound("transaccion no encontrada")
	}
	if actor.Rol == model.RoleCajero && t.CashierID != actor.ID {
		return nil, apierror.Forbidden("la transaccion pertenece a otro cajero")
	}
	return t, nil
}

func (s *cashierService) lockedQuotation(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Quotation, error) {
	if tx == nil {
		return s.quotationRepo.FindByID(ctx, id)
	}
	return s.quotationRepo.FindByIDForUpdate(tx, id)
}

func (s *cashierService) sumForQuotation(ctx context.Context, tx *gorm.DB, id uuid.UUID) (decimal.Decimal, error) {
	if tx == nil {
		return s.repo.SumAssignedForQuotation(ctx, id)
	}
	return s.repo.SumAssignedForQuotationTx(tx, id)
}

func (s *cashierService) sumForAccountDay(ctx context.Context, tx *gorm.DB, cashierID, accountID uuid.UUID, dayStart, dayEnd time.Time) (decimal.Decimal, error) {
	if tx == nil {
		return s.repo.SumAssignedForAccountDay(ctx, cashierID, accountID, dayStart, dayEnd)
	}
	return s.repo.SumAssignedForAccountDayTx(tx, cashierID, accountID, dayStart, dayEnd)
}

func orDB(tx, db *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// today returns the local calendar day as a half-open [start, end) window.
func today() (time.Time, time.Time) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

func cashierTxToResponse(t *model.CashierTransaction) dto.CashierTransactionResponse {
	resp := dto.CashierTransactionResponse{
		ID:                    t.ID.String(),
		Code:                  t.Code,
		QuotationID:           t.QuotationID.String(),
		CashierID:             t.CashierID.String(),
		CashierAccountID:      t.CashierAccountID.String(),
		AssignedAmountBs:      t.AssignedAmountBs,
		SuggestedExchangeRate: t.SuggestedExchangeRate,
		ExpectedUsdt:          t.ExpectedUsdt,
		DeliveredUsdt:         t.DeliveredUsdt,
		Status:                string(t.Status),
		Notas:                 t.Notas,
		StartedAt:             fmtTimePtr(t.StartedAt),
		CompletedAt:           fmtTimePtr(t.CompletedAt),
		CreatedAt:             fmtTime(t.CreatedAt),
	}
	if t.DeliveredUsdt != nil {
		slippage := t.DeliveredUsdt.Sub(t.ExpectedUsdt)
		resp.SlippageUsdt = &slippage
	}
	return resp
}

func accountToResponse(a *model.CashierAccount) dto.CashierAccountResponse {
	return dto.CashierAccountResponse{
		ID:            a.ID.String(),
		Nombre:        a.Nombre,
		Banco:         a.Banco,
		AccountNumber: a.AccountNumber,
		DailyLimitBs:  a.DailyLimitBs,
		Activo:        a.Activo,
	}
}
