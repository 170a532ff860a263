package service

import (
	"context"
	"time"

	"mercury/internal/apierror"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/repository"
	"mercury/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ContractService interface {
	// CreateFromQuotation turns an ACCEPTED quotation into its (unique)
	// contract. A second call for the same quotation is a conflict.
	CreateFromQuotation(ctx context.Context, actor Actor, quotationID uuid.UUID) (*dto.ContractResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ContractResponse, error)
	List(ctx context.Context, actor Actor, page, limit int) (*dto.ContractListResponse, error)
	Sign(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ContractResponse, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID, motivo string) (*dto.ContractResponse, error)
}

type contractService struct {
	repo          repository.ContractRepository
	quotationRepo repository.QuotationRepository
	requestRepo   repository.RequestRepository
	auditRepo     repository.AuditRepository
	dispatcher    *worker.Dispatcher
}

func NewContractService(
	repo repository.ContractRepository,
	quotationRepo repository.QuotationRepository,
	requestRepo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	dispatcher *worker.Dispatcher,
) ContractService {
	return &contractService{
		repo: repo, quotationRepo: quotationRepo, requestRepo: requestRepo,
		auditRepo: auditRepo, dispatcher: dispatcher,
	}
}

func (s *contractService) CreateFromQuotation(ctx context.Context, actor Actor, quotationID uuid.UUID) (*dto.ContractResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, quotationID)
	if err != nil {
		return nil, apierror.NotFound("cotizacion no encontrada")
	}
	if q.Status != model.QuotationAccepted {
		return nil, apierror.Invalid("solo una cotizacion aceptada genera contrato")
	}
	if existing, err := s.repo.FindByQuotationID(ctx, quotationID); err == nil && existing != nil {
		return nil, apierror.Conflict("la cotizacion ya tiene el contrato " + existing.Code)
	}
	rq, err := s.requestRepo.FindByID(ctx, q.RequestID)
	if err != nil {
		return nil, apierror.NotFound("solicitud no encontrada")
	}

	code, err := s.repo.NextCode(ctx)
	if err != nil {
		return nil, err
	}
	contract := &model.Contract{
		Code:        code,
		QuotationID: q.ID,
		RequestID:   rq.ID,
		CompanyID:   rq.CompanyID,
		Amount:      q.Amount,
		Currency:    q.Currency,
		Status:      model.ContractActive,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.create(ctx, tx, contract); err != nil {
			return err
		}
		audit(ctx, s.auditRepo, tx, &actor.ID, "contract.create", "contract", contract.ID, nil, contract)
		return nil
	})
	if err != nil {
		// the unique index on quotation_id closes the race between two
		// concurrent creates for the same quotation
		return nil, apierror.Conflict("la cotizacion ya tiene un contrato")
	}

	s.notify(ctx, contract, worker.NotificationJobPayload{
		UserIDs: []string{rq.CreatedByID.String()},
		Tipo:    "contract", Titulo: "Contrato generado",
		Cuerpo:    "El contrato " + contract.Code + " fue generado para la solicitud " + rq.Code + ".",
		EntityRef: "contract:" + contract.ID.String(),
	})
	resp := contractToResponse(contract)
	return &resp, nil
}

func (s *contractService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ContractResponse, error) {
	contract, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := contractToResponse(contract)
	return &resp, nil
}

func (s *contractService) List(ctx context.Context, actor Actor, page, limit int) (*dto.ContractListResponse, error) {
	var companyID *uuid.UUID
	if actor.Rol == model.RoleImportador {
		if actor.CompanyID == nil {
			return nil, apierror.Forbidden("el usuario no pertenece a ninguna empresa")
		}
		companyID = actor.CompanyID
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	contracts, total, err := s.repo.List(ctx, companyID, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.ContractListResponse{
		Data:  make([]dto.ContractResponse, len(contracts)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range contracts {
		resp.Data[i] = contractToResponse(&contracts[i])
	}
	return resp, nil
}

// Sign moves an ACTIVE contract to SIGNED. Importers sign their own
// company's contracts; admins may sign on behalf of the importer.
func (s *contractService) Sign(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ContractResponse, error) {
	contract, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !contract.Status.CanTransition(model.ContractSigned) {
		return nil, apierror.Invalid("el contrato no puede firmarse en estado " + string(contract.Status))
	}
	now := time.Now()
	before := *contract
	contract.Status = model.ContractSigned
	contract.SignedAt = &now
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "contract.sign", "contract", contract.ID, before, contract)
	s.notify(ctx, contract, worker.NotificationJobPayload{
		Role: string(model.RoleAdmin),
		Tipo: "contract", Titulo: "Contrato firmado",
		Cuerpo:    "El contrato " + contract.Code + " fue firmado; se espera el comprobante de pago.",
		EntityRef: "contract:" + contract.ID.String(),
	})
	resp := contractToResponse(contract)
	return &resp, nil
}

func (s *contractService) Cancel(ctx context.Context, actor Actor, id uuid.UUID, motivo string) (*dto.ContractResponse, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("contrato no encontrado")
	}
	if !contract.Status.CanTransition(model.ContractCancelled) {
		return nil, apierror.Invalid("el contrato no puede cancelarse en estado " + string(contract.Status))
	}
	before := *contract
	contract.Status = model.ContractCancelled
	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "contract.cancel", "contract", contract.ID, before, contract)
	s.notify(ctx, contract, worker.NotificationJobPayload{
		Role: string(model.RoleAdmin),
		Tipo: "contract", Titulo: "Contrato cancelado",
		Cuerpo:    "El contrato " + contract.Code + " fue cancelado. Motivo: " + motivo,
		EntityRef: "contract:" + contract.ID.String(),
	})
	resp := contractToResponse(contract)
	return &resp, nil
}

func (s *contractService) findScoped(ctx context.Context, actor Actor, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("contrato no encontrado")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(contract.CompanyID) {
		return nil, apierror.Forbidden("el contrato pertenece a otra empresa")
	}
	return contract, nil
}

func (s *contractService) create(ctx context.Context, tx *gorm.DB, c *model.Contract) error {
	if tx == nil {
		tx = s.repo.DB()
	}
	return s.repo.CreateTx(tx, c)
}

func (s *contractService) notify(ctx context.Context, contract *model.Contract, payload worker.NotificationJobPayload) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueNotification(ctx, payload); err != nil {
		log.Error().Err(err).Str("contract", contract.Code).Msg("enqueue contract notification failed")
	}
}

func contractToResponse(c *model.Contract) dto.ContractResponse {
	return dto.ContractResponse{
		ID:          c.ID.String(),
		Code:        c.Code,
		QuotationID: c.QuotationID.String(),
		RequestID:   c.RequestID.String(),
		CompanyID:   c.CompanyID.String(),
		Amount:      c.Amount,
		Currency:    c.Currency,
		Status:      string(c.Status),
		SignedAt:    fmtTimePtr(c.SignedAt),
		CreatedAt:   fmtTime(c.CreatedAt),
	}
}
