package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"mercury/internal/apierror"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cashierFixture struct {
	svc           service.CashierService
	cashierRepo   *stubCashierRepo
	quotationRepo *stubQuotationRepo
	auditRepo     *stubAuditRepo

	cashier service.Actor
	admin   service.Actor
}

func newCashierFixture(t *testing.T) *cashierFixture {
	t.Helper()
	f := &cashierFixture{
		cashierRepo:   newStubCashierRepo(),
		quotationRepo: newStubQuotationRepo(),
		auditRepo:     newStubAuditRepo(),
	}
	f.svc = service.NewCashierService(f.cashierRepo, f.quotationRepo, f.auditRepo)
	f.cashier = service.Actor{ID: uuid.New(), Rol: model.RoleCajero}
	f.admin = service.Actor{ID: uuid.New(), Rol: model.RoleAdmin}
	return f
}

// seedAcceptedQuotation creates an ACCEPTED quotation with the given Bs total
// at a 7.0 exchange rate.
func (f *cashierFixture) seedAcceptedQuotation(t *testing.T, totalBs int64) *model.Quotation {
	t.Helper()
	q := &model.Quotation{
		Code:         "COT-2026-0" + uuid.NewString()[:4],
		RequestID:    uuid.New(),
		CreatedByID:  f.admin.ID,
		Amount:       decimal.NewFromInt(totalBs).Div(decimal.NewFromFloat(7.0)).Round(2),
		Currency:     "USD",
		ExchangeRate: decimal.NewFromFloat(7.0),
		TotalInBs:    decimal.NewFromInt(totalBs),
		ValidUntil:   time.Now().Add(72 * time.Hour),
		Status:       model.QuotationAccepted,
	}
	require.NoError(t, f.quotationRepo.Create(context.Background(), q))
	return q
}

// seedAssignedAccount creates an active account with the given daily limit
// and assigns it to the fixture cashier.
func (f *cashierFixture) seedAssignedAccount(t *testing.T, dailyLimitBs int64) *model.CashierAccount {
	t.Helper()
	account := &model.CashierAccount{
		Nombre:        "Cuenta BNB",
		Banco:         "Banco Nacional de Bolivia",
		AccountNumber: uuid.NewString()[:12],
		DailyLimitBs:  decimal.NewFromInt(dailyLimitBs),
		Activo:        true,
	}
	require.NoError(t, f.cashierRepo.CreateAccount(context.Background(), account))
	require.NoError(t, f.cashierRepo.AssignAccount(context.Background(), &model.CashierAccountAssignment{
		CashierID:        f.cashier.ID,
		CashierAccountID: account.ID,
	}))
	return account
}

func TestParticipateComputesExpectedUsdt(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	account := f.seedAssignedAccount(t, 50000)

	resp, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(4000),
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.CashierTxPending), resp.Status)
	// 4000 Bs / 7.0 = 571.43 USDT
	assert.True(t, resp.ExpectedUsdt.Equal(decimal.NewFromFloat(571.43)), "got %s", resp.ExpectedUsdt)
	assert.True(t, resp.SuggestedExchangeRate.Equal(decimal.NewFromFloat(7.0)))
	assert.NotEmpty(t, resp.Code)

	available, err := f.svc.AvailableQuotations(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.True(t, available[0].RemainingAmountBs.Equal(decimal.NewFromInt(6000)), "got %s", available[0].RemainingAmountBs)
}

func TestParticipateRejectsNonPositiveAmounts(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	account := f.seedAssignedAccount(t, 50000)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5000)} {
		_, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
			CashierAccountID: account.ID.String(),
			AssignedAmountBs: amount,
		})
		require.Error(t, err, "amount %s", amount)
		assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
	}

	// no transaction was created, so the full amount is still claimable
	available, err := f.svc.AvailableQuotations(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.True(t, available[0].RemainingAmountBs.Equal(decimal.NewFromInt(10000)), "got %s", available[0].RemainingAmountBs)
}

func TestParticipateExceedingRemainingConflicts(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	account := f.seedAssignedAccount(t, 50000)

	_, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(4000),
	})
	require.NoError(t, err)

	// only 6000 Bs left
	_, err = f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(7000),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
	assert.Contains(t, err.Error(), "6000.00")
}

func TestParticipateExceedingDailyLimitConflicts(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 100000)
	account := f.seedAssignedAccount(t, 5000)

	_, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(3000),
	})
	require.NoError(t, err)

	_, err = f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(2500),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
	assert.Contains(t, err.Error(), "limite diario")
}

func TestParticipateUnassignedAccountForbidden(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)

	account := &model.CashierAccount{
		Nombre: "Cuenta ajena", Banco: "BCP", AccountNumber: "999000111",
		DailyLimitBs: decimal.NewFromInt(50000), Activo: true,
	}
	require.NoError(t, f.cashierRepo.CreateAccount(context.Background(), account))

	_, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(1000),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apierror.StatusOf(err))
}

func TestParticipateInactiveAccountRejected(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	account := f.seedAssignedAccount(t, 50000)
	account.Activo = false
	require.NoError(t, f.cashierRepo.UpdateAccount(context.Background(), account))

	_, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(1000),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestParticipateRequiresAcceptedQuotation(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	q.Status = model.QuotationSent
	require.NoError(t, f.quotationRepo.Update(context.Background(), q))
	account := f.seedAssignedAccount(t, 50000)

	_, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(1000),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestCancelReleasesClaimedAmount(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	account := f.seedAssignedAccount(t, 50000)

	created, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(4000),
	})
	require.NoError(t, err)

	txID := uuid.MustParse(created.ID)
	cancelled, err := f.svc.Cancel(context.Background(), f.cashier, txID)
	require.NoError(t, err)
	assert.Equal(t, string(model.CashierTxCancelled), cancelled.Status)

	available, err := f.svc.AvailableQuotations(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.True(t, available[0].RemainingAmountBs.Equal(decimal.NewFromInt(10000)), "got %s", available[0].RemainingAmountBs)

	usage, err := f.svc.DailyUsage(context.Background(), f.cashier)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.True(t, usage[0].UsedTodayBs.IsZero(), "got %s", usage[0].UsedTodayBs)
}

func TestCompleteRecordsDeliveryAndSlippage(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	account := f.seedAssignedAccount(t, 50000)

	created, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(4000),
	})
	require.NoError(t, err)
	txID := uuid.MustParse(created.ID)

	started, err := f.svc.Start(context.Background(), f.cashier, txID)
	require.NoError(t, err)
	assert.Equal(t, string(model.CashierTxInProgress), started.Status)
	assert.NotNil(t, started.StartedAt)

	completed, err := f.svc.Complete(context.Background(), f.cashier, txID, dto.CompleteTransactionRequest{
		DeliveredUsdt: decimal.NewFromFloat(560.00),
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.CashierTxCompleted), completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	require.NotNil(t, completed.SlippageUsdt)
	// 560.00 delivered vs 571.43 expected
	assert.True(t, completed.SlippageUsdt.Equal(decimal.NewFromFloat(-11.43)), "got %s", completed.SlippageUsdt)
}

func TestCompleteRejectedAfterCancel(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	account := f.seedAssignedAccount(t, 50000)

	created, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(4000),
	})
	require.NoError(t, err)
	txID := uuid.MustParse(created.ID)

	_, err = f.svc.Cancel(context.Background(), f.cashier, txID)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), f.cashier, txID, dto.CompleteTransactionRequest{
		DeliveredUsdt: decimal.NewFromFloat(560.00),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestFullyClaimedQuotationNotListed(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 10000)
	account := f.seedAssignedAccount(t, 50000)

	_, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)

	available, err := f.svc.AvailableQuotations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestDailyUsageReportsRemainingLimit(t *testing.T) {
	f := newCashierFixture(t)
	q := f.seedAcceptedQuotation(t, 100000)
	account := f.seedAssignedAccount(t, 20000)

	_, err := f.svc.Participate(context.Background(), f.cashier, q.ID, dto.ParticipateRequest{
		CashierAccountID: account.ID.String(),
		AssignedAmountBs: decimal.NewFromInt(8000),
	})
	require.NoError(t, err)

	usage, err := f.svc.DailyUsage(context.Background(), f.cashier)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.True(t, usage[0].UsedTodayBs.Equal(decimal.NewFromInt(8000)), "got %s", usage[0].UsedTodayBs)
	assert.True(t, usage[0].RemainingLimitBs.Equal(decimal.NewFromInt(12000)), "got %s", usage[0].RemainingLimitBs)
}

func TestAssignAccountTwiceConflicts(t *testing.T) {
	f := newCashierFixture(t)
	account := f.seedAssignedAccount(t, 20000)

	err := f.svc.AssignAccount(context.Background(), f.admin, account.ID, dto.AssignAccountRequest{
		CashierID: f.cashier.ID.String(),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
}
