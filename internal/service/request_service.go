package service

import (
	"context"

	"mercury/internal/apierror"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/repository"
	"mercury/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type RequestService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateRequestRequest) (*dto.RequestResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.RequestResponse, error)
	List(ctx context.Context, actor Actor, filter dto.RequestFilter) (*dto.RequestListResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateRequestRequest) (*dto.RequestResponse, error)
	Submit(ctx context.Context, actor Actor, id uuid.UUID) (*dto.RequestResponse, error)
	AdminUpdate(ctx context.Context, actor Actor, id uuid.UUID, req dto.AdminUpdateRequestRequest) (*dto.RequestResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type requestService struct {
	repo       repository.RequestRepository
	auditRepo  repository.AuditRepository
	dispatcher *worker.Dispatcher
}

func NewRequestService(repo repository.RequestRepository, auditRepo repository.AuditRepository, dispatcher *worker.Dispatcher) RequestService {
	return &requestService{repo: repo, auditRepo: auditRepo, dispatcher: dispatcher}
}

func (s *requestService) Create(ctx context.Context, actor Actor, req dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	if actor.CompanyID == nil {
		return nil, apierror.Forbidden("el usuario no pertenece a ninguna empresa")
	}
	code, err := s.repo.NextCode(ctx)
	if err != nil {
		return nil, err
	}
	status := model.RequestPending
	if req.Draft {
		status = model.RequestDraft
	}
	rq := &model.Request{
		Code:        code,
		CompanyID:   *actor.CompanyID,
		CreatedByID: actor.ID,
		Descripcion: req.Descripcion,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      status,
	}
	if err := s.repo.Create(ctx, rq); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "request.create", "request", rq.ID, nil, rq)
	if status == model.RequestPending {
		s.notifyAdmins(ctx, rq, "Nueva solicitud", "La solicitud "+rq.Code+" fue registrada y espera revision.")
	}
	resp := requestToResponse(rq)
	return &resp, nil
}

func (s *requestService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.RequestResponse, error) {
	rq, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := requestToResponse(rq)
	return &resp, nil
}

func (s *requestService) List(ctx context.Context, actor Actor, filter dto.RequestFilter) (*dto.RequestListResponse, error) {
	var companyID *uuid.UUID
	if actor.Rol == model.RoleImportador {
		if actor.CompanyID == nil {
			return nil, apierror.Forbidden("el usuario no pertenece a ninguna empresa")
		}
		companyID = actor.CompanyID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	requests, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.RequestListResponse{
		Data:  make([]dto.RequestResponse, len(requests)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range requests {
		resp.Data[i] = requestToResponse(&requests[i])
	}
	return resp, nil
}

// Update covers the importer's own edits, allowed only while DRAFT.
func (s *requestService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateRequestRequest) (*dto.RequestResponse, error) {
	rq, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if rq.Status != model.RequestDraft {
		return nil, apierror.Invalid("solo una solicitud en borrador puede editarse")
	}
	before := *rq
	if req.Descripcion != "" {
		rq.Descripcion = req.Descripcion
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, apierror.Invalid("el monto debe ser mayor a cero")
		}
		rq.Amount = *req.Amount
	}
	if req.Currency != "" {
		rq.Currency = req.Currency
	}
	if err := s.repo.Update(ctx, rq); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "request.update", "request", rq.ID, before, rq)
	resp := requestToResponse(rq)
	return &resp, nil
}

// Submit moves a DRAFT request to PENDING, making it visible to admins.
func (s *requestService) Submit(ctx context.Context, actor Actor, id uuid.UUID) (*dto.RequestResponse, error) {
	rq, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !rq.Status.CanTransition(model.RequestPending) {
		return nil, apierror.Invalid("la solicitud no puede enviarse desde el estado " + string(rq.Status))
	}
	before := *rq
	rq.Status = model.RequestPending
	if err := s.repo.Update(ctx, rq); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "request.submit", "request", rq.ID, before, rq)
	s.notifyAdmins(ctx, rq, "Nueva solicitud", "La solicitud "+rq.Code+" fue enviada y espera revision.")
	resp := requestToResponse(rq)
	return &resp, nil
}

// AdminUpdate changes status, assignment or review notes. Status moves go
// through the transition table; anything else is a 400.
func (s *requestService) AdminUpdate(ctx context.Context, actor Actor, id uuid.UUID, req dto.AdminUpdateRequestRequest) (*dto.RequestResponse, error) {
	rq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("solicitud no encontrada")
	}
	before := *rq
	if req.Status != "" {
		to := model.RequestStatus(req.Status)
		if rq.Status != to && !rq.Status.CanTransition(to) {
			return nil, apierror.Invalid("transicion de estado no permitida: " + string(rq.Status) + " -> " + string(to))
		}
		rq.Status = to
	}
	if req.AssignedToID != nil {
		aid, err := uuid.Parse(*req.AssignedToID)
		if err != nil {
			return nil, apierror.Invalid("assigned_to_id invalido")
		}
		rq.AssignedToID = &aid
	}
	if req.ReviewNotes != nil {
		rq.ReviewNotes = req.ReviewNotes
	}
	if err := s.repo.Update(ctx, rq); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "request.admin_update", "request", rq.ID, before, rq)
	if before.Status != rq.Status {
		s.notifyCompany(ctx, rq, "Solicitud actualizada",
			"La solicitud "+rq.Code+" cambio a estado "+string(rq.Status)+".")
	}
	resp := requestToResponse(rq)
	return &resp, nil
}

func (s *requestService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	rq, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return err
	}
	if actor.Rol == model.RoleImportador && rq.Status != model.RequestDraft {
		return apierror.Invalid("solo una solicitud en borrador puede eliminarse")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "request.delete", "request", rq.ID, rq, nil)
	return nil
}

// findScoped loads a request and enforces company ownership for importers.
func (s *requestService) findScoped(ctx context.Context, actor Actor, id uuid.UUID) (*model.Request, error) {
	rq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("solicitud no encontrada")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(rq.CompanyID) {
		return nil, apierror.Forbidden("la solicitud pertenece a otra empresa")
	}
	return rq, nil
}

func (s *requestService) notifyAdmins(ctx context.Context, rq *model.Request, titulo, cuerpo string) {
	if s.dispatcher == nil {
		return
	}
	ref := "request:" + rq.ID.String()
	err := s.dispatcher.EnqueueNotification(ctx, worker.NotificationJobPayload{
		Role: string(model.RoleAdmin), Tipo: "request", Titulo: titulo, Cuerpo: cuerpo, EntityRef: ref,
	})
	if err != nil {
		log.Error().Err(err).Str("request", rq.Code).Msg("enqueue admin notification failed")
	}
}

func (s *requestService) notifyCompany(ctx context.Context, rq *model.Request, titulo, cuerpo string) {
	if s.dispatcher == nil {
		return
	}
	ref := "request:" + rq.ID.String()
	err := s.dispatcher.EnqueueNotification(ctx, worker.NotificationJobPayload{
		UserIDs: []string{rq.CreatedByID.String()},
		Tipo:    "request", Titulo: titulo, Cuerpo: cuerpo, EntityRef: ref,
	})
	if err != nil {
		log.Error().Err(err).Str("request", rq.Code).Msg("enqueue company notification failed")
	}
}

func requestToResponse(rq *model.Request) dto.RequestResponse {
	return dto.RequestResponse{
		ID:             rq.ID.String(),
		Code:           rq.Code,
		CompanyID:      rq.CompanyID.String(),
		Descripcion:    rq.Descripcion,
		Amount:         rq.Amount,
		Currency:       rq.Currency,
		Status:         string(rq.Status),
		RejectionCount: rq.RejectionCount,
		ReviewNotes:    rq.ReviewNotes,
		AssignedToID:   uuidPtrString(rq.AssignedToID),
		CreatedAt:      fmtTime(rq.CreatedAt),
	}
}
