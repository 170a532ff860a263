package service

import (
	"context"
	"io"
	"time"

	"mercury/internal/apierror"
	"mercury/internal/config"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/repository"
	"mercury/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BlobStorage is the slice of the object store the payment flow needs.
// *infra.Storage satisfies it.
type BlobStorage interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, string, error)
}

// FileUpload carries one multipart file from the handler into the service.
type FileUpload struct {
	Filename string
	MimeType string
	Size     int64
	Reader   io.Reader
}

var proofMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
}

type PaymentService interface {
	// UploadPaymentProof registers the importer's payment against a signed
	// contract: a PENDING payment plus its proof document, moving the
	// contract to PAYMENT_PENDING, all in one transaction.
	UploadPaymentProof(ctx context.Context, actor Actor, contractID uuid.UUID, tipo model.PaymentType, amount *decimal.Decimal, file FileUpload) (*dto.UploadProofResponse, error)
	// Review applies the admin decision: APPROVE, REJECT or
	// MARK_PROVIDER_PAID.
	Review(ctx context.Context, actor Actor, paymentID uuid.UUID, req dto.ReviewPaymentRequest) (*dto.ReviewPaymentResponse, error)
	// UploadProviderProof attaches the provider settlement document and
	// closes the payment leg (contract -> PAYMENT_COMPLETED).
	UploadProviderProof(ctx context.Context, actor Actor, paymentID uuid.UUID, file FileUpload, notas *string) (*dto.ReviewPaymentResponse, error)
	// RecordFinalPayment books the closing FINAL payment with its invoice
	// and completes the contract and its request.
	RecordFinalPayment(ctx context.Context, actor Actor, contractID uuid.UUID, req dto.FinalPaymentRequest, invoice FileUpload) (*dto.UploadProofResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.PaymentResponse, error)
	ListByContract(ctx context.Context, actor Actor, contractID uuid.UUID) ([]dto.PaymentResponse, error)
	ListPendingReview(ctx context.Context) ([]dto.PaymentResponse, error)
}

type paymentService struct {
	repo         repository.PaymentRepository
	contractRepo repository.ContractRepository
	requestRepo  repository.RequestRepository
	documentRepo repository.DocumentRepository
	auditRepo    repository.AuditRepository
	storage      BlobStorage
	dispatcher   *worker.Dispatcher
	cfg          *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	contractRepo repository.ContractRepository,
	requestRepo repository.RequestRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	storage BlobStorage,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo: repo, contractRepo: contractRepo, requestRepo: requestRepo,
		documentRepo: documentRepo, auditRepo: auditRepo,
		storage: storage, dispatcher: dispatcher, cfg: cfg,
	}
}

func (s *paymentService) UploadPaymentProof(ctx context.Context, actor Actor, contractID uuid.UUID, tipo model.PaymentType, amount *decimal.Decimal, file FileUpload) (*dto.UploadProofResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, apierror.NotFound("contrato no encontrado")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(contract.CompanyID) {
		return nil, apierror.Forbidden("el contrato pertenece a otra empresa")
	}
	// SIGNED for the first proof; PAYMENT_PENDING re-entry after a rejection
	if !contract.Status.CanTransition(model.ContractPaymentPending) {
		return nil, apierror.Invalid("el contrato no admite comprobantes en estado " + string(contract.Status))
	}
	if open, err := s.repo.FindOpenByContract(ctx, contractID); err == nil && open != nil {
		return nil, apierror.Conflict("ya existe el pago " + open.Code + " pendiente de revision")
	}
	if err := s.validateFile(file, s.cfg.MaxProofUploadMB); err != nil {
		return nil, err
	}

	if tipo == "" {
		tipo = model.PaymentTypePartial
	}
	paymentAmount := contract.Amount
	if amount != nil {
		if !amount.IsPositive() {
			return nil, apierror.Invalid("el monto debe ser mayor a cero")
		}
		paymentAmount = *amount
	}

	objectKey, url, err := s.storage.Upload(ctx, file.Filename, file.Reader, file.Size, file.MimeType)
	if err != nil {
		return nil, err
	}
	code, err := s.repo.NextCode(ctx)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		Code:        code,
		ContractID:  contract.ID,
		Tipo:        tipo,
		Amount:      paymentAmount,
		Currency:    contract.Currency,
		Status:      model.PaymentPending,
		CreatedByID: actor.ID,
	}
	doc := &model.Document{
		Filename:     file.Filename,
		ObjectKey:    objectKey,
		URL:          url,
		MimeType:     file.MimeType,
		Size:         file.Size,
		Tipo:         model.DocComprobantePago,
		CompanyID:    &contract.CompanyID,
		ContractID:   &contract.ID,
		UploadedByID: actor.ID,
	}
	beforeContract := *contract
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.createPayment(tx, payment); err != nil {
			return err
		}
		doc.PaymentID = &payment.ID
		if err := s.createDocument(ctx, tx, doc); err != nil {
			return err
		}
		contract.Status = model.ContractPaymentPending
		if err := s.updateContract(ctx, tx, contract); err != nil {
			return err
		}
		audit(ctx, s.auditRepo, tx, &actor.ID, "payment.upload_proof", "payment", payment.ID, nil, payment)
		audit(ctx, s.auditRepo, tx, &actor.ID, "contract.status", "contract", contract.ID, beforeContract, contract)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, payment, worker.NotificationJobPayload{
		Role: string(model.RoleAdmin),
		Tipo: "payment", Titulo: "Comprobante recibido",
		Cuerpo:    "El contrato " + contract.Code + " recibio el comprobante del pago " + payment.Code + ".",
		EntityRef: "payment:" + payment.ID.String(),
	})
	return &dto.UploadProofResponse{
		Payment:        paymentToResponse(payment),
		Document:       documentToResponse(doc),
		ContractStatus: string(contract.Status),
	}, nil
}

func (s *paymentService) Review(ctx context.Context, actor Actor, paymentID uuid.UUID, req dto.ReviewPaymentRequest) (*dto.ReviewPaymentResponse, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, apierror.NotFound("pago no encontrado")
	}
	contract, err := s.contractRepo.FindByID(ctx, payment.ContractID)
	if err != nil {
		return nil, apierror.NotFound("contrato no encontrado")
	}

	now := time.Now()
	beforePayment := *payment
	beforeContract := *contract
	var titulo, cuerpo string

	switch req.Action {
	case "APPROVE":
		if payment.Status != model.PaymentPending || contract.Status != model.ContractPaymentPending {
			return nil, apierror.Conflict("el pago ya fue revisado")
		}
		payment.Status = model.PaymentInProgress
		payment.ReviewNotes = req.ReviewNotes
		payment.ReviewedAt = &now
		payment.ReviewedByID = &actor.ID
		contract.Status = model.ContractPaymentReviewed
		titulo, cuerpo = "Pago aprobado", "El pago "+payment.Code+" fue aprobado; sigue el pago al proveedor."
	case "REJECT":
		if payment.Status != model.PaymentPending || contract.Status != model.ContractPaymentPending {
			return nil, apierror.Conflict("el pago ya fue revisado")
		}
		payment.Status = model.PaymentCancelled
		payment.ReviewNotes = req.ReviewNotes
		payment.ReviewedAt = &now
		payment.ReviewedByID = &actor.ID
		// the contract stays PAYMENT_PENDING so the importer can re-upload
		titulo, cuerpo = "Pago rechazado", "El comprobante del pago "+payment.Code+" fue rechazado; suba uno nuevo."
	case "MARK_PROVIDER_PAID":
		if contract.Status != model.ContractPaymentReviewed || payment.Status != model.PaymentInProgress {
			return nil, apierror.Conflict("el pago no esta aprobado para marcar el pago al proveedor")
		}
		contract.Status = model.ContractProviderPaid
		titulo, cuerpo = "Proveedor pagado", "El proveedor del contrato "+contract.Code+" fue pagado."
	default:
		return nil, apierror.Invalid("accion de revision desconocida")
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.updatePayment(tx, payment); err != nil {
			return err
		}
		if beforeContract.Status != contract.Status {
			if err := s.updateContract(ctx, tx, contract); err != nil {
				return err
			}
			audit(ctx, s.auditRepo, tx, &actor.ID, "contract.status", "contract", contract.ID, beforeContract, contract)
		}
		audit(ctx, s.auditRepo, tx, &actor.ID, "payment.review."+req.Action, "payment", payment.ID, beforePayment, payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, payment, worker.NotificationJobPayload{
		UserIDs: []string{payment.CreatedByID.String()},
		Tipo:    "payment", Titulo: titulo, Cuerpo: cuerpo,
		EntityRef: "payment:" + payment.ID.String(),
	})
	return &dto.ReviewPaymentResponse{
		Payment:        paymentToResponse(payment),
		ContractStatus: string(contract.Status),
	}, nil
}

func (s *paymentService) UploadProviderProof(ctx context.Context, actor Actor, paymentID uuid.UUID, file FileUpload, notas *string) (*dto.ReviewPaymentResponse, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, apierror.NotFound("pago no encontrado")
	}
	contract, err := s.contractRepo.FindByID(ctx, payment.ContractID)
	if err != nil {
		return nil, apierror.NotFound("contrato no encontrado")
	}
	if contract.Status != model.ContractProviderPaid {
		return nil, apierror.Invalid("el contrato no registra pago al proveedor en estado " + string(contract.Status))
	}
	if err := s.validateFile(file, s.cfg.MaxProviderUploadMB); err != nil {
		return nil, err
	}

	objectKey, url, err := s.storage.Upload(ctx, file.Filename, file.Reader, file.Size, file.MimeType)
	if err != nil {
		return nil, err
	}
	doc := &model.Document{
		Filename:     file.Filename,
		ObjectKey:    objectKey,
		URL:          url,
		MimeType:     file.MimeType,
		Size:         file.Size,
		Tipo:         model.DocComprobanteProveedor,
		Notas:        notas,
		CompanyID:    &contract.CompanyID,
		ContractID:   &contract.ID,
		PaymentID:    &payment.ID,
		UploadedByID: actor.ID,
	}
	beforePayment := *payment
	beforeContract := *contract
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.createDocument(ctx, tx, doc); err != nil {
			return err
		}
		payment.Status = model.PaymentCompleted
		if err := s.updatePayment(tx, payment); err != nil {
			return err
		}
		contract.Status = model.ContractPaymentCompleted
		if err := s.updateContract(ctx, tx, contract); err != nil {
			return err
		}
		audit(ctx, s.auditRepo, tx, &actor.ID, "payment.provider_proof", "payment", payment.ID, beforePayment, payment)
		audit(ctx, s.auditRepo, tx, &actor.ID, "contract.status", "contract", contract.ID, beforeContract, contract)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, payment, worker.NotificationJobPayload{
		UserIDs: []string{payment.CreatedByID.String()},
		Tipo:    "payment", Titulo: "Pago al proveedor completado",
		Cuerpo:    "El contrato " + contract.Code + " completo su ciclo de pago; resta el pago final.",
		EntityRef: "payment:" + payment.ID.String(),
	})
	return &dto.ReviewPaymentResponse{
		Payment:        paymentToResponse(payment),
		ContractStatus: string(contract.Status),
	}, nil
}

func (s *paymentService) RecordFinalPayment(ctx context.Context, actor Actor, contractID uuid.UUID, req dto.FinalPaymentRequest, invoice FileUpload) (*dto.UploadProofResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, apierror.NotFound("contrato no encontrado")
	}
	if contract.Status != model.ContractPaymentCompleted {
		return nil, apierror.Invalid("el contrato no admite el pago final en estado " + string(contract.Status))
	}
	if err := s.validateFile(invoice, s.cfg.MaxProviderUploadMB); err != nil {
		return nil, err
	}

	objectKey, url, err := s.storage.Upload(ctx, invoice.Filename, invoice.Reader, invoice.Size, invoice.MimeType)
	if err != nil {
		return nil, err
	}
	code, err := s.repo.NextCode(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	payment := &model.Payment{
		Code:         code,
		ContractID:   contract.ID,
		Tipo:         model.PaymentTypeFinal,
		Amount:       req.Amount,
		Currency:     contract.Currency,
		Status:       model.PaymentCompleted,
		ReviewNotes:  req.Notas,
		ReviewedAt:   &now,
		ReviewedByID: &actor.ID,
		CreatedByID:  actor.ID,
	}
	doc := &model.Document{
		Filename:     invoice.Filename,
		ObjectKey:    objectKey,
		URL:          url,
		MimeType:     invoice.MimeType,
		Size:         invoice.Size,
		Tipo:         model.DocFactura,
		CompanyID:    &contract.CompanyID,
		ContractID:   &contract.ID,
		UploadedByID: actor.ID,
	}
	beforeContract := *contract
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.createPayment(tx, payment); err != nil {
			return err
		}
		doc.PaymentID = &payment.ID
		if err := s.createDocument(ctx, tx, doc); err != nil {
			return err
		}
		contract.Status = model.ContractCompleted
		if err := s.updateContract(ctx, tx, contract); err != nil {
			return err
		}
		// the request closes with its contract
		if rq, err := s.requestRepo.FindByID(ctx, contract.RequestID); err == nil {
			if rq.Status.CanTransition(model.RequestCompleted) {
				beforeRq := *rq
				rq.Status = model.RequestCompleted
				if err := s.updateRequest(ctx, tx, rq); err != nil {
					return err
				}
				audit(ctx, s.auditRepo, tx, &actor.ID, "request.status", "request", rq.ID, beforeRq, rq)
			}
		}
		audit(ctx, s.auditRepo, tx, &actor.ID, "payment.final", "payment", payment.ID, nil, payment)
		audit(ctx, s.auditRepo, tx, &actor.ID, "contract.status", "contract", contract.ID, beforeContract, contract)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, payment, worker.NotificationJobPayload{
		Role: string(model.RoleAdmin),
		Tipo: "payment", Titulo: "Contrato completado",
		Cuerpo:    "El contrato " + contract.Code + " quedo completado con el pago final " + payment.Code + ".",
		EntityRef: "contract:" + contract.ID.String(),
	})
	return &dto.UploadProofResponse{
		Payment:        paymentToResponse(payment),
		Document:       documentToResponse(doc),
		ContractStatus: string(contract.Status),
	}, nil
}

func (s *paymentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.PaymentResponse, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("pago no encontrado")
	}
	if actor.Rol == model.RoleImportador {
		contract, err := s.contractRepo.FindByID(ctx, payment.ContractID)
		if err != nil || !actor.OwnsCompany(contract.CompanyID) {
			return nil, apierror.Forbidden("el pago pertenece a otra empresa")
		}
	}
	resp := paymentToResponse(payment)
	return &resp, nil
}

func (s *paymentService) ListByContract(ctx context.Context, actor Actor, contractID uuid.UUID) ([]dto.PaymentResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, apierror.NotFound("contrato no encontrado")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(contract.CompanyID) {
		return nil, apierror.Forbidden("el contrato pertenece a otra empresa")
	}
	payments, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		resp[i] = paymentToResponse(&payments[i])
	}
	return resp, nil
}

func (s *paymentService) ListPendingReview(ctx context.Context) ([]dto.PaymentResponse, error) {
	payments, err := s.repo.ListPendingReview(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		resp[i] = paymentToResponse(&payments[i])
	}
	return resp, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *paymentService) validateFile(file FileUpload, maxMB int) error {
	if file.Reader == nil || file.Size == 0 {
		return apierror.Invalid("el archivo es requerido")
	}
	if !proofMimeTypes[file.MimeType] {
		return apierror.Invalid("tipo de archivo no permitido: " + file.MimeType)
	}
	if file.Size > int64(maxMB)*1024*1024 {
		return apierror.Invalid("el archivo excede el limite de " + decimal.NewFromInt(int64(maxMB)).String() + " MB")
	}
	return nil
}

func (s *paymentService) createPayment(tx *gorm.DB, p *model.Payment) error {
	if tx == nil {
		tx = s.repo.DB()
	}
	return s.repo.CreateTx(tx, p)
}

func (s *paymentService) updatePayment(tx *gorm.DB, p *model.Payment) error {
	if tx == nil {
		tx = s.repo.DB()
	}
	return s.repo.UpdateTx(tx, p)
}

func (s *paymentService) createDocument(ctx context.Context, tx *gorm.DB, d *model.Document) error {
	if tx == nil {
		return s.documentRepo.Create(ctx, d)
	}
	return s.documentRepo.CreateTx(tx, d)
}

func (s *paymentService) updateContract(ctx context.Context, tx *gorm.DB, c *model.Contract) error {
	if tx == nil {
		return s.contractRepo.Update(ctx, c)
	}
	return s.contractRepo.UpdateTx(tx, c)
}

func (s *paymentService) updateRequest(ctx context.Context, tx *gorm.DB, rq *model.Request) error {
	if tx == nil {
		return s.requestRepo.Update(ctx, rq)
	}
	return s.requestRepo.UpdateTx(tx, rq)
}

func (s *paymentService) notify(ctx context.Context, payment *model.Payment, payload worker.NotificationJobPayload) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueNotification(ctx, payload); err != nil {
		log.Error().Err(err).Str("payment", payment.Code).Msg("enqueue payment notification failed")
	}
}

func paymentToResponse(p *model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:          p.ID.String(),
		Code:        p.Code,
		ContractID:  p.ContractID.String(),
		Tipo:        string(p.Tipo),
		Amount:      p.Amount,
		Currency:    p.Currency,
		Status:      string(p.Status),
		ReviewNotes: p.ReviewNotes,
		ReviewedAt:  fmtTimePtr(p.ReviewedAt),
		CreatedAt:   fmtTime(p.CreatedAt),
	}
}
