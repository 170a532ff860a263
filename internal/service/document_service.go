package service

import (
	"context"

	"mercury/internal/apierror"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/repository"

	"github.com/google/uuid"
)

type DocumentService interface {
	// UploadForRequest attaches a backing document to a request
	// (RESPALDO_SOLICITUD): supplier invoices, proformas, specs.
	UploadForRequest(ctx context.Context, actor Actor, requestID uuid.UUID, file FileUpload, notas *string) (*dto.DocumentResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.DocumentResponse, error)
	ListByRequest(ctx context.Context, actor Actor, requestID uuid.UUID) ([]dto.DocumentResponse, error)
	ListByContract(ctx context.Context, actor Actor, contractID uuid.UUID) ([]dto.DocumentResponse, error)
}

type documentService struct {
	repo        repository.DocumentRepository
	requestRepo repository.RequestRepository
	contractRepo repository.ContractRepository
	storage     BlobStorage
	maxUploadMB int
}

func NewDocumentService(
	repo repository.DocumentRepository,
	requestRepo repository.RequestRepository,
	contractRepo repository.ContractRepository,
	storage BlobStorage,
	maxUploadMB int,
) DocumentService {
	return &documentService{
		repo: repo, requestRepo: requestRepo, contractRepo: contractRepo,
		storage: storage, maxUploadMB: maxUploadMB,
	}
}

func (s *documentService) UploadForRequest(ctx context.Context, actor Actor, requestID uuid.UUID, file FileUpload, notas *string) (*dto.DocumentResponse, error) {
	rq, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, apierror.NotFound("solicitud no encontrada")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(rq.CompanyID) {
		return nil, apierror.Forbidden("la solicitud pertenece a otra empresa")
	}
	if file.Reader == nil || file.Size == 0 {
		return nil, apierror.Invalid("el archivo es requerido")
	}
	if !proofMimeTypes[file.MimeType] {
		return nil, apierror.Invalid("tipo de archivo no permitido: " + file.MimeType)
	}
	if file.Size > int64(s.maxUploadMB)*1024*1024 {
		return nil, apierror.Invalid("el archivo excede el limite permitido")
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
		Tipo:         model.DocRespaldoSolicitud,
		Notas:        notas,
		CompanyID:    &rq.CompanyID,
		RequestID:    &rq.ID,
		UploadedByID: actor.ID,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	resp := documentToResponse(doc)
	return &resp, nil
}

func (s *documentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("documento no encontrado")
	}
	if actor.Rol == model.RoleImportador && doc.CompanyID != nil && !actor.OwnsCompany(*doc.CompanyID) {
		return nil, apierror.Forbidden("el documento pertenece a otra empresa")
	}
	resp := documentToResponse(doc)
	return &resp, nil
}

func (s *documentService) ListByRequest(ctx context.Context, actor Actor, requestID uuid.UUID) ([]dto.DocumentResponse, error) {
	rq, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, apierror.NotFound("solicitud no encontrada")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(rq.CompanyID) {
		return nil, apierror.Forbidden("la solicitud pertenece a otra empresa")
	}
	docs, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return documentsToResponse(docs), nil
}

func (s *documentService) ListByContract(ctx context.Context, actor Actor, contractID uuid.UUID) ([]dto.DocumentResponse, error) {
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, apierror.NotFound("contrato no encontrado")
	}
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(contract.CompanyID) {
		return nil, apierror.Forbidden("el contrato pertenece a otra empresa")
	}
	docs, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return documentsToResponse(docs), nil
}

func documentsToResponse(docs []model.Document) []dto.DocumentResponse {
	resp := make([]dto.DocumentResponse, len(docs))
	for i := range docs {
		resp[i] = documentToResponse(&docs[i])
	}
	return resp
}

func documentToResponse(d *model.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:         d.ID.String(),
		Filename:   d.Filename,
		URL:        d.URL,
		MimeType:   d.MimeType,
		Size:       d.Size,
		Tipo:       string(d.Tipo),
		Notas:      d.Notas,
		ContractID: uuidPtrString(d.ContractID),
		PaymentID:  uuidPtrString(d.PaymentID),
		RequestID:  uuidPtrString(d.RequestID),
		CreatedAt:  fmtTime(d.CreatedAt),
	}
}
