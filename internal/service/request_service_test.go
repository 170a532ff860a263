package service_test

import (
	"context"
	"net/http"
	"testing"

	"mercury/internal/apierror"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	svc         service.RequestService
	requestRepo *stubRequestRepo
	auditRepo   *stubAuditRepo

	companyID uuid.UUID
	importer  service.Actor
	admin     service.Actor
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	f := &requestFixture{
		requestRepo: newStubRequestRepo(),
		auditRepo:   newStubAuditRepo(),
	}
	f.svc = service.NewRequestService(f.requestRepo, f.auditRepo, nil)
	f.companyID = uuid.New()
	companyID := f.companyID
	f.importer = service.Actor{ID: uuid.New(), Rol: model.RoleImportador, CompanyID: &companyID}
	f.admin = service.Actor{ID: uuid.New(), Rol: model.RoleAdmin}
	return f
}

func TestRequestCreateSubmitsByDefault(t *testing.T) {
	f := newRequestFixture(t)

	resp, err := f.svc.Create(context.Background(), f.importer, dto.CreateRequestRequest{
		Descripcion: "Importacion de repuestos",
		Amount:      decimal.NewFromInt(15000),
		Currency:    "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.RequestPending), resp.Status)
	assert.NotEmpty(t, resp.Code)
	assert.Equal(t, f.companyID.String(), resp.CompanyID)
}

func TestRequestCreateAsDraft(t *testing.T) {
	f := newRequestFixture(t)

	resp, err := f.svc.Create(context.Background(), f.importer, dto.CreateRequestRequest{
		Descripcion: "Importacion de insumos",
		Amount:      decimal.NewFromInt(5000),
		Currency:    "USD",
		Draft:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.RequestDraft), resp.Status)
}

func TestRequestCreateWithoutCompanyForbidden(t *testing.T) {
	f := newRequestFixture(t)
	orphan := service.Actor{ID: uuid.New(), Rol: model.RoleImportador}

	_, err := f.svc.Create(context.Background(), orphan, dto.CreateRequestRequest{
		Descripcion: "sin empresa",
		Amount:      decimal.NewFromInt(100),
		Currency:    "USD",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apierror.StatusOf(err))
}

func TestRequestSubmitDraft(t *testing.T) {
	f := newRequestFixture(t)
	created, err := f.svc.Create(context.Background(), f.importer, dto.CreateRequestRequest{
		Descripcion: "Importacion de equipos",
		Amount:      decimal.NewFromInt(8000),
		Currency:    "USD",
		Draft:       true,
	})
	require.NoError(t, err)

	submitted, err := f.svc.Submit(context.Background(), f.importer, uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, string(model.RequestPending), submitted.Status)

	// resubmitting is not a valid transition
	_, err = f.svc.Submit(context.Background(), f.importer, uuid.MustParse(created.ID))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestRequestUpdateOnlyWhileDraft(t *testing.T) {
	f := newRequestFixture(t)
	created, err := f.svc.Create(context.Background(), f.importer, dto.CreateRequestRequest{
		Descripcion: "Importacion de telas",
		Amount:      decimal.NewFromInt(8000),
		Currency:    "USD",
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), f.importer, uuid.MustParse(created.ID), dto.UpdateRequestRequest{
		Descripcion: "Importacion de telas sinteticas",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestRequestAdminUpdateRejectsInvalidTransition(t *testing.T) {
	f := newRequestFixture(t)
	created, err := f.svc.Create(context.Background(), f.importer, dto.CreateRequestRequest{
		Descripcion: "Importacion de vehiculos",
		Amount:      decimal.NewFromInt(80000),
		Currency:    "USD",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	// PENDING -> COMPLETED skips the whole lifecycle
	_, err = f.svc.AdminUpdate(context.Background(), f.admin, id, dto.AdminUpdateRequestRequest{
		Status: string(model.RequestCompleted),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))

	resp, err := f.svc.AdminUpdate(context.Background(), f.admin, id, dto.AdminUpdateRequestRequest{
		Status: string(model.RequestInReview),
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.RequestInReview), resp.Status)
}

func TestRequestDeleteOnlyDraftForImporter(t *testing.T) {
	f := newRequestFixture(t)
	created, err := f.svc.Create(context.Background(), f.importer, dto.CreateRequestRequest{
		Descripcion: "Importacion de granos",
		Amount:      decimal.NewFromInt(3000),
		Currency:    "USD",
	})
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), f.importer, uuid.MustParse(created.ID))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestRequestListScopedToCompany(t *testing.T) {
	f := newRequestFixture(t)
	_, err := f.svc.Create(context.Background(), f.importer, dto.CreateRequestRequest{
		Descripcion: "Importacion de cacao",
		Amount:      decimal.NewFromInt(3000),
		Currency:    "USD",
	})
	require.NoError(t, err)

	otherCompany := uuid.New()
	outsider := service.Actor{ID: uuid.New(), Rol: model.RoleImportador, CompanyID: &otherCompany}

	mine, err := f.svc.List(context.Background(), f.importer, dto.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	none, err := f.svc.List(context.Background(), outsider, dto.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), none.Total)

	all, err := f.svc.List(context.Background(), f.admin, dto.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), all.Total)
}
