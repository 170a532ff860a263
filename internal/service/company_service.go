package service

import (
	"context"

	"mercury/internal/apierror"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/repository"

	"github.com/google/uuid"
)

type CompanyService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.CompanyResponse, error)
	List(ctx context.Context) ([]dto.CompanyResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
}

type companyService struct {
	repo      repository.CompanyRepository
	auditRepo repository.AuditRepository
}

func NewCompanyService(repo repository.CompanyRepository, auditRepo repository.AuditRepository) CompanyService {
	return &companyService{repo: repo, auditRepo: auditRepo}
}

func (s *companyService) Create(ctx context.Context, actor Actor, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	company := &model.Company{
		Nombre:       req.Nombre,
		NIT:          req.NIT,
		ContactEmail: req.ContactEmail,
		Telefono:     req.Telefono,
		Direccion:    req.Direccion,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, apierror.Conflict("el NIT ya esta registrado")
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "company.create", "company", company.ID, nil, company)
	resp := companyToResponse(company)
	return &resp, nil
}

func (s *companyService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.CompanyResponse, error) {
	// importers only see their own company
	if actor.Rol == model.RoleImportador && !actor.OwnsCompany(id) {
		return nil, apierror.Forbidden("la empresa no corresponde al usuario")
	}
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("empresa no encontrada")
	}
	resp := companyToResponse(company)
	return &resp, nil
}

func (s *companyService) List(ctx context.Context) ([]dto.CompanyResponse, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CompanyResponse, len(companies))
	for i := range companies {
		resp[i] = companyToResponse(&companies[i])
	}
	return resp, nil
}

func (s *companyService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("empresa no encontrada")
	}
	before := *company
	if req.Nombre != "" {
		company.Nombre = req.Nombre
	}
	if req.ContactEmail != "" {
		company.ContactEmail = req.ContactEmail
	}
	if req.Telefono != nil {
		company.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		company.Direccion = req.Direccion
	}
	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "company.update", "company", company.ID, before, company)
	resp := companyToResponse(company)
	return &resp, nil
}

func (s *companyService) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.NotFound("empresa no encontrada")
	}
	audit(ctx, s.auditRepo, nil, &actor.ID, "company.deactivate", "company", id, nil, nil)
	return nil
}

func companyToResponse(c *model.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:           c.ID.String(),
		Nombre:       c.Nombre,
		NIT:          c.NIT,
		ContactEmail: c.ContactEmail,
		Telefono:     c.Telefono,
		Direccion:    c.Direccion,
		Activo:       c.Activo,
	}
}
