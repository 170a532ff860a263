package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"mercury/internal/apierror"
	"mercury/internal/model"
	"mercury/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contractFixture struct {
	svc           service.ContractService
	contractRepo  *stubContractRepo
	quotationRepo *stubQuotationRepo
	requestRepo   *stubRequestRepo
	auditRepo     *stubAuditRepo

	companyID uuid.UUID
	importer  service.Actor
	admin     service.Actor
}

func newContractFixture(t *testing.T) *contractFixture {
	t.Helper()
	f := &contractFixture{
		contractRepo:  newStubContractRepo(),
		quotationRepo: newStubQuotationRepo(),
		requestRepo:   newStubRequestRepo(),
		auditRepo:     newStubAuditRepo(),
	}
	f.svc = service.NewContractService(f.contractRepo, f.quotationRepo, f.requestRepo, f.auditRepo, nil)
	f.companyID = uuid.New()
	companyID := f.companyID
	f.importer = service.Actor{ID: uuid.New(), Rol: model.RoleImportador, CompanyID: &companyID}
	f.admin = service.Actor{ID: uuid.New(), Rol: model.RoleAdmin}
	return f
}

// seedAcceptedQuotation builds an APPROVED request with an ACCEPTED quotation
// ready to be contracted.
func (f *contractFixture) seedAcceptedQuotation(t *testing.T) *model.Quotation {
	t.Helper()
	rq := &model.Request{
		Code:        "REQ-2026-00001",
		CompanyID:   f.companyID,
		CreatedByID: f.importer.ID,
		Descripcion: "Maquinaria textil",
		Amount:      decimal.NewFromInt(10000),
		Currency:    "USD",
		Status:      model.RequestApproved,
	}
	require.NoError(t, f.requestRepo.Create(context.Background(), rq))

	q := &model.Quotation{
		Code:         "COT-2026-00001",
		RequestID:    rq.ID,
		CreatedByID:  f.admin.ID,
		Amount:       decimal.NewFromInt(10000),
		Currency:     "USD",
		ExchangeRate: decimal.NewFromFloat(7.0),
		TotalInBs:    decimal.NewFromInt(70000),
		ValidUntil:   time.Now().Add(72 * time.Hour),
		Status:       model.QuotationAccepted,
	}
	require.NoError(t, f.quotationRepo.Create(context.Background(), q))
	return q
}

func TestContractCreateFromAcceptedQuotation(t *testing.T) {
	f := newContractFixture(t)
	q := f.seedAcceptedQuotation(t)

	resp, err := f.svc.CreateFromQuotation(context.Background(), f.admin, q.ID)
	require.NoError(t, err)

	assert.Equal(t, string(model.ContractActive), resp.Status)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, q.ID.String(), resp.QuotationID)
	assert.NotEmpty(t, resp.Code)
}

func TestContractCreateRequiresAcceptedQuotation(t *testing.T) {
	f := newContractFixture(t)
	q := f.seedAcceptedQuotation(t)
	q.Status = model.QuotationSent
	require.NoError(t, f.quotationRepo.Update(context.Background(), q))

	_, err := f.svc.CreateFromQuotation(context.Background(), f.admin, q.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestContractCreateTwiceConflicts(t *testing.T) {
	f := newContractFixture(t)
	q := f.seedAcceptedQuotation(t)

	_, err := f.svc.CreateFromQuotation(context.Background(), f.admin, q.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateFromQuotation(context.Background(), f.admin, q.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
}

func TestContractSign(t *testing.T) {
	f := newContractFixture(t)
	q := f.seedAcceptedQuotation(t)

	created, err := f.svc.CreateFromQuotation(context.Background(), f.admin, q.ID)
	require.NoError(t, err)
	contractID := uuid.MustParse(created.ID)

	signed, err := f.svc.Sign(context.Background(), f.importer, contractID)
	require.NoError(t, err)
	assert.Equal(t, string(model.ContractSigned), signed.Status)
	assert.NotNil(t, signed.SignedAt)

	// signing twice is not a valid transition
	_, err = f.svc.Sign(context.Background(), f.importer, contractID)
	require.Error(t, err)
}

func TestContractSignForeignCompanyForbidden(t *testing.T) {
	f := newContractFixture(t)
	q := f.seedAcceptedQuotation(t)

	created, err := f.svc.CreateFromQuotation(context.Background(), f.admin, q.ID)
	require.NoError(t, err)

	otherCompany := uuid.New()
	intruder := service.Actor{ID: uuid.New(), Rol: model.RoleImportador, CompanyID: &otherCompany}
	_, err = f.svc.Sign(context.Background(), intruder, uuid.MustParse(created.ID))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apierror.StatusOf(err))
}

func TestContractCancelNonTerminal(t *testing.T) {
	f := newContractFixture(t)
	q := f.seedAcceptedQuotation(t)

	created, err := f.svc.CreateFromQuotation(context.Background(), f.admin, q.ID)
	require.NoError(t, err)
	contractID := uuid.MustParse(created.ID)

	cancelled, err := f.svc.Cancel(context.Background(), f.admin, contractID, "proveedor incumplio plazos")
	require.NoError(t, err)
	assert.Equal(t, string(model.ContractCancelled), cancelled.Status)

	// terminal: cancelling again fails
	_, err = f.svc.Cancel(context.Background(), f.admin, contractID, "de nuevo")
	require.Error(t, err)
}

func TestContractListScopedToImporterCompany(t *testing.T) {
	f := newContractFixture(t)
	q := f.seedAcceptedQuotation(t)
	_, err := f.svc.CreateFromQuotation(context.Background(), f.admin, q.ID)
	require.NoError(t, err)

	mine, err := f.svc.List(context.Background(), f.importer, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	otherCompany := uuid.New()
	outsider := service.Actor{ID: uuid.New(), Rol: model.RoleImportador, CompanyID: &otherCompany}
	none, err := f.svc.List(context.Background(), outsider, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), none.Total)
}
