package service

import (
	"context"

	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/repository"

	"github.com/google/uuid"
)

type AuditService interface {
	ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]dto.AuditLogResponse, error)
	List(ctx context.Context, page, limit int) ([]dto.AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) ListByEntity(ctx context.Context, entity string, entityID uuid.UUID) ([]dto.AuditLogResponse, error) {
	entries, err := s.repo.ListByEntity(ctx, entity, entityID)
	if err != nil {
		return nil, err
	}
	return auditToResponse(entries), nil
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]dto.AuditLogResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	entries, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return auditToResponse(entries), total, nil
}

func auditToResponse(entries []model.AuditLog) []dto.AuditLogResponse {
	resp := make([]dto.AuditLogResponse, len(entries))
	for i, e := range entries {
		resp[i] = dto.AuditLogResponse{
			ID:        e.ID.String(),
			ActorID:   uuidPtrString(e.ActorID),
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID.String(),
			Before:    string(e.Before),
			After:     string(e.After),
			CreatedAt: fmtTime(e.CreatedAt),
		}
	}
	return resp
}
