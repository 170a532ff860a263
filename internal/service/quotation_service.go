package service

import (
	"context"
	"fmt"
	"time"

	"mercury/internal/apierror"
	"mercury/internal/config"
	"mercury/internal/dto"
	"mercury/internal/infra"
	"mercury/internal/model"
	"mercury/internal/repository"
	"mercury/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// maxQuotationRejections cancels the request after this many rejected
// quotations.
const maxQuotationRejections = 3

type QuotationService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateQuotationRequest) (*dto.QuotationResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.QuotationResponse, error)
	ListByRequest(ctx context.Context, actor Actor, requestID uuid.UUID) ([]dto.QuotationResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateQuotationRequest) (*dto.QuotationResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Send(ctx context.Context, actor Actor, id uuid.UUID) (*dto.QuotationResponse, error)
	// Respond records the importer's accept/reject decision. A rejection
	// increments the request's rejection counter and, at the third strike,
	// cancels the request outright.
	Respond(ctx context.Context, actor Actor, id uuid.UUID, req dto.RespondQuotationRequest) (*dto.RespondQuotationResponse, error)
}

type quotationService struct {
	repo        repository.QuotationRepository
	requestRepo repository.RequestRepository
	companyRepo repository.CompanyRepository
	auditRepo   repository.AuditRepository
	dispatcher  *worker.Dispatcher
	cfg         *config.Config
}

func NewQuotationService(
	repo repository.QuotationRepository,
	requestRepo repository.RequestRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) QuotationService {
	return &quotationService{
		repo: repo, requestRepo: requestRepo, companyRepo: companyRepo,
		auditRepo: auditRepo, dispatcher: dispatcher, cfg: cfg,
	}
}

func (s *quotationService) Create(ctx context.Context, actor Actor, req dto.CreateQuotationRequest) (*dto.QuotationResponse, error) {
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return nil, apierror.Invalid("request_id invalido")
	}
	rq, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, apierror.NotFound("solicitud no encontrada")
	}
	switch rq.Status {
	case model.RequestPending, model.RequestInReview:
	default:
		return nil, apierror.Invalid("la solicitud no admite cotizaciones en estado " + string(rq.Status))
	}

	validUntil, err := parseValidUntil(req.ValidUntil)
	if err != nil {
		return nil, err
	}
	code, err := s.repo.NextCode(ctx)
	if err != nil {
		return nil, err
	}
	q := &model.Quotation{
		Code:         code,
		RequestID:    rq.ID,
		CreatedByID:  actor.ID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
		TotalInBs:    req.Amount.Mul(req.ExchangeRate).Round(2),
		ValidUntil:   validUntil,
		Status:       model.QuotationDraft,
		Notas:        req.Notas,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "quotation.create", "quotation", q.ID, nil, q)
	resp := quotationToResponse(q)
	return &resp, nil
}

func (s *quotationService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.QuotationResponse, error) {
	q, _, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := quotationToResponse(q)
	return &resp, nil
}

func (s *quotationService) ListByRequest(ctx context.Context, actor Actor, requestID uuid.UUID) ([]dto.QuotationResponse, error) {
	rq, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, apierror.NotFound("solicitud no encontrada")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(rq.CompanyID) {
		return nil, apierror.Forbidden("la solicitud pertenece a otra empresa")
	}
	quotations, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.QuotationResponse, len(quotations))
	for i := range quotations {
		resp[i] = quotationToResponse(&quotations[i])
	}
	return resp, nil
}

func (s *quotationService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateQuotationRequest) (*dto.QuotationResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("cotizacion no encontrada")
	}
	if !q.Status.Editable() {
		return nil, apierror.Invalid("la cotizacion ya no es editable en estado " + string(q.Status))
	}
	before := *q
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, apierror.Invalid("el monto debe ser mayor a cero")
		}
		q.Amount = *req.Amount
	}
	if req.ExchangeRate != nil {
		if !req.ExchangeRate.IsPositive() {
			return nil, apierror.Invalid("el tipo de cambio debe ser mayor a cero")
		}
		q.ExchangeRate = *req.ExchangeRate
	}
	if req.ValidUntil != "" {
		validUntil, err := parseValidUntil(req.ValidUntil)
		if err != nil {
			return nil, err
		}
		q.ValidUntil = validUntil
	}
	if req.Notas != nil {
		q.Notas = req.Notas
	}
	q.TotalInBs = q.Amount.Mul(q.ExchangeRate).Round(2)
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "quotation.update", "quotation", q.ID, before, q)
	resp := quotationToResponse(q)
	return &resp, nil
}

func (s *quotationService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("cotizacion no encontrada")
	}
	if !q.Status.Editable() {
		return apierror.Invalid("la cotizacion ya no puede eliminarse en estado " + string(q.Status))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "quotation.delete", "quotation", q.ID, q, nil)
	return nil
}

// Send publishes a DRAFT quotation to the importer: stamps SentAt, moves the
// request into review and fans out email + in-app notifications. The PDF and
// email legs are best-effort; a failure there never rolls back the send.
func (s *quotationService) Send(ctx context.Context, actor Actor, id uuid.UUID) (*dto.QuotationResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("cotizacion no encontrada")
	}
	if q.Status != model.QuotationDraft {
		return nil, apierror.Invalid("solo una cotizacion en borrador puede enviarse")
	}
	rq, err := s.requestRepo.FindByID(ctx, q.RequestID)
	if err != nil {
		return nil, apierror.NotFound("solicitud no encontrada")
	}

	now := time.Now()
	before := *q
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		q.Status = model.QuotationSent
		q.SentAt = &now
		if err := s.update(ctx, tx, q); err != nil {
			return err
		}
		if rq.Status == model.RequestPending {
			rq.Status = model.RequestInReview
			if err := s.updateRequest(ctx, tx, rq); err != nil {
				return err
			}
		}
		audit(ctx, s.auditRepo, tx, &actor.ID, "quotation.send", "quotation", q.ID, before, q)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fanOutSent(ctx, q, rq)
	resp := quotationToResponse(q)
	return &resp, nil
}

func (s *quotationService) Respond(ctx context.Context, actor Actor, id uuid.UUID, req dto.RespondQuotationRequest) (*dto.RespondQuotationResponse, error) {
	q, rq, err := s.findScoped(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	switch q.Status {
	case model.QuotationDraft, model.QuotationSent:
	default:
		return nil, apierror.Conflict("la cotizacion ya fue respondida o expiro")
	}

	now := time.Now()
	if q.ExpiredAt(now) {
		// lazily flip the stored status; the sweeper may not have run yet
		q.Status = model.QuotationExpired
		if err := s.repo.Update(ctx, q); err != nil {
			log.Error().Err(err).Str("quotation", q.Code).Msg("expire on respond failed")
		}
		return nil, apierror.Conflict("la cotizacion expiro el " + q.ValidUntil.Format("2006-01-02"))
	}

	target := model.QuotationStatus(req.Action)
	var rejectionCount int

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// re-read under lock: a concurrent respond or the sweeper may have
		// moved the quotation between the guard above and this transaction
		locked, err := s.lockedFind(tx, q.ID)
		if err != nil {
			return err
		}
		if locked.Status != q.Status {
			return apierror.Conflict("la cotizacion cambio de estado, intente de nuevo")
		}
		before := *locked
		if !locked.Status.CanTransition(target) {
			return apierror.Conflict("la cotizacion no puede pasar a " + string(target))
		}
		locked.Status = target
		locked.RespondedAt = &now
		if target == model.QuotationRejected {
			locked.RejectionReason = req.Notes
		}
		if err := s.update(ctx, tx, locked); err != nil {
			return err
		}

		beforeRq := *rq
		switch target {
		case model.QuotationAccepted:
			if rq.Status != model.RequestApproved {
				if !rq.Status.CanTransition(model.RequestApproved) {
					return apierror.Conflict("la solicitud no puede aprobarse desde " + string(rq.Status))
				}
				rq.Status = model.RequestApproved
			}
		case model.QuotationRejected:
			n, err := s.countRejected(ctx, tx, rq.ID)
			if err != nil {
				return err
			}
			rejectionCount = int(n)
			rq.RejectionCount = rejectionCount
			motivo := ""
			if req.Notes != nil {
				motivo = *req.Notes
			}
			if rejectionCount >= maxQuotationRejections {
				rq.Status = model.RequestCancelled
				notes := fmt.Sprintf("Solicitud cancelada: %d cotizaciones rechazadas. Ultimo motivo: %s", rejectionCount, motivo)
				rq.ReviewNotes = &notes
			} else {
				if rq.Status != model.RequestPending {
					rq.Status = model.RequestPending
				}
				notes := fmt.Sprintf("%d/%d cotizaciones rechazadas: %s", rejectionCount, maxQuotationRejections, motivo)
				rq.ReviewNotes = &notes
			}
		}
		if err := s.updateRequest(ctx, tx, rq); err != nil {
			return err
		}
		audit(ctx, s.auditRepo, tx, &actor.ID, "quotation.respond", "quotation", locked.ID, before, locked)
		audit(ctx, s.auditRepo, tx, &actor.ID, "request.status", "request", rq.ID, beforeRq, rq)
		*q = *locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.fanOutResponded(ctx, q, rq, target)
	return &dto.RespondQuotationResponse{
		Quotation:      quotationToResponse(q),
		RequestStatus:  string(rq.Status),
		RejectionCount: rejectionCount,
	}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// findScoped loads the quotation plus its request and enforces that an
// importer only touches quotations of their own company.
func (s *quotationService) findScoped(ctx context.Context, actor Actor, id uuid.UUID) (*model.Quotation, *model.Request, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, apierror.NotFound("cotizacion no encontrada")
	}
	rq, err := s.requestRepo.FindByID(ctx, q.RequestID)
	if err != nil {
		return nil, nil, apierror.NotFound("solicitud no encontrada")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(rq.CompanyID) {
		return nil, nil, apierror.Forbidden("la cotizacion pertenece a otra empresa")
	}
	return q, rq, nil
}

func (s *quotationService) lockedFind(tx *gorm.DB, id uuid.UUID) (*model.Quotation, error) {
	if tx == nil {
		return s.repo.FindByID(context.Background(), id)
	}
	return s.repo.FindByIDForUpdate(tx, id)
}

func (s *quotationService) update(ctx context.Context, tx *gorm.DB, q *model.Quotation) error {
	if tx == nil {
		return s.repo.Update(ctx, q)
	}
	return s.repo.UpdateTx(tx, q)
}

func (s *quotationService) updateRequest(ctx context.Context, tx *gorm.DB, rq *model.Request) error {
	if tx == nil {
		return s.requestRepo.Update(ctx, rq)
	}
	return s.requestRepo.UpdateTx(tx, rq)
}

func (s *quotationService) countRejected(ctx context.Context, tx *gorm.DB, requestID uuid.UUID) (int64, error) {
	if tx == nil {
		tx = s.repo.DB()
	}
	return s.repo.CountRejectedByRequestTx(tx, requestID)
}

// fanOutSent emails the company contact (with the quotation PDF attached when
// generation succeeds) and notifies the company's users in-app.
func (s *quotationService) fanOutSent(ctx context.Context, q *model.Quotation, rq *model.Request) {
	if s.dispatcher == nil {
		return
	}
	attachment := ""
	if path, err := infra.GenerateQuotationPDF(q, rq, s.cfg.PDFStoragePath); err != nil {
		log.Error().Err(err).Str("quotation", q.Code).Msg("quotation pdf generation failed")
	} else {
		attachment = path
	}
	company, err := s.companyRepo.FindByID(ctx, rq.CompanyID)
	if err != nil {
		log.Error().Err(err).Str("quotation", q.Code).Msg("company lookup for email failed")
	} else {
		err = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: company.ContactEmail,
			Subject: "Cotizacion " + q.Code + " para la solicitud " + rq.Code,
			Body: fmt.Sprintf(
				"Su solicitud %s recibio la cotizacion %s por %s %s (total %s Bs, valida hasta %s).",
				rq.Code, q.Code, q.Amount.StringFixed(2), q.Currency,
				q.TotalInBs.StringFixed(2), q.ValidUntil.Format("2006-01-02")),
			AttachmentPath: attachment,
		})
		if err != nil {
			log.Error().Err(err).Str("quotation", q.Code).Msg("enqueue quotation email failed")
		}
	}
	err = s.dispatcher.EnqueueNotification(ctx, worker.NotificationJobPayload{
		UserIDs: []string{rq.CreatedByID.String()},
		Tipo:    "quotation", Titulo: "Nueva cotizacion",
		Cuerpo:    "La solicitud " + rq.Code + " recibio la cotizacion " + q.Code + ".",
		EntityRef: "quotation:" + q.ID.String(),
	})
	if err != nil {
		log.Error().Err(err).Str("quotation", q.Code).Msg("enqueue sent notification failed")
	}
}

func (s *quotationService) fanOutResponded(ctx context.Context, q *model.Quotation, rq *model.Request, target model.QuotationStatus) {
	if s.dispatcher == nil {
		return
	}
	var cuerpo string
	switch {
	case target == model.QuotationAccepted:
		cuerpo = "La cotizacion " + q.Code + " fue aceptada; corresponde generar el contrato."
	case rq.Status == model.RequestCancelled:
		cuerpo = "La cotizacion " + q.Code + " fue rechazada y la solicitud " + rq.Code + " quedo cancelada."
	default:
		cuerpo = "La cotizacion " + q.Code + " fue rechazada (" + fmt.Sprintf("%d/%d", rq.RejectionCount, maxQuotationRejections) + ")."
	}
	err := s.dispatcher.EnqueueNotification(ctx, worker.NotificationJobPayload{
		Role: string(model.RoleAdmin),
		Tipo: "quotation", Titulo: "Cotizacion respondida", Cuerpo: cuerpo,
		EntityRef: "quotation:" + q.ID.String(),
	})
	if err != nil {
		log.Error().Err(err).Str("quotation", q.Code).Msg("enqueue responded notification failed")
	}
}

// parseValidUntil parses YYYY-MM-DD and requires at least tomorrow.
func parseValidUntil(raw string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, apierror.Invalid("valid_until debe tener formato YYYY-MM-DD")
	}
	// end of that day, so the quotation stays valid through the named date
	validUntil := day.Add(24*time.Hour - time.Second)
	now := time.Now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	if day.Before(tomorrow) {
		return time.Time{}, apierror.Invalid("valid_until debe ser al menos manana")
	}
	return validUntil, nil
}

func quotationToResponse(q *model.Quotation) dto.QuotationResponse {
	return dto.QuotationResponse{
		ID:              q.ID.String(),
		Code:            q.Code,
		RequestID:       q.RequestID.String(),
		Amount:          q.Amount,
		Currency:        q.Currency,
		ExchangeRate:    q.ExchangeRate,
		TotalInBs:       q.TotalInBs,
		ValidUntil:      q.ValidUntil.Format("2006-01-02"),
		Status:          string(q.Status),
		Notas:           q.Notas,
		RejectionReason: q.RejectionReason,
		SentAt:          fmtTimePtr(q.SentAt),
		RespondedAt:     fmtTimePtr(q.RespondedAt),
		CreatedAt:       fmtTime(q.CreatedAt),
	}
}
