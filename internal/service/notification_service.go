package service

import (
	"context"

	"mercury/internal/dto"
	"mercury/internal/repository"

	"github.com/google/uuid"
)

type NotificationService interface {
	ListMine(ctx context.Context, actor Actor, onlyUnread bool, page, limit int) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor Actor) error
	CountUnread(ctx context.Context, actor Actor) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) ListMine(ctx context.Context, actor Actor, onlyUnread bool, page, limit int) ([]dto.NotificationResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	notifications, total, err := s.repo.ListByUser(ctx, actor.ID, onlyUnread, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = dto.NotificationResponse{
			ID:        n.ID.String(),
			Tipo:      n.Tipo,
			Titulo:    n.Titulo,
			Cuerpo:    n.Cuerpo,
			EntityRef: n.EntityRef,
			Leida:     n.Leida,
			CreatedAt: fmtTime(n.CreatedAt),
		}
	}
	return resp, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, actor.ID, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor Actor) error {
	return s.repo.MarkAllRead(ctx, actor.ID)
}

func (s *notificationService) CountUnread(ctx context.Context, actor Actor) (int64, error) {
	return s.repo.CountUnread(ctx, actor.ID)
}
