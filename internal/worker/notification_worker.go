package worker

// notification_worker.go
// Fans an event out into in-app Notification rows. The payload either names
// explicit user ids or a role; role fan-out resolves the current active users
// of that role at delivery time.

import (
	"context"
	"encoding/json"

	"mercury/internal/model"
	"mercury/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificationJobPayload is the job envelope sent to QueueNotification.
type NotificationJobPayload struct {
	UserIDs   []string `json:"user_ids,omitempty"`
	Role      string   `json:"role,omitempty"`
	Tipo      string   `json:"tipo"`
	Titulo    string   `json:"titulo"`
	Cuerpo    string   `json:"cuerpo"`
	EntityRef string   `json:"entity_ref,omitempty"`
}

type NotificationWorker struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
}

func NewNotificationWorker(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationWorker {
	return &NotificationWorker{notificationRepo: notificationRepo, userRepo: userRepo}
}

// Process creates one Notification row per recipient. Partial failures are
// logged per row; there is no rollback of already-created rows.
func (w *NotificationWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload NotificationJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notification_worker: invalid payload")
		return
	}

	recipients := make([]uuid.UUID, 0, len(payload.UserIDs))
	for _, id := range payload.UserIDs {
		uid, err := uuid.Parse(id)
		if err != nil {
			log.Warn().Str("user_id", id).Msg("notification_worker: bad user id — skipping")
			continue
		}
		recipients = append(recipients, uid)
	}

	if payload.Role != "" {
		users, err := w.userRepo.ListActiveByRole(ctx, model.Role(payload.Role))
		if err != nil {
			log.Error().Err(err).Str("role", payload.Role).Msg("notification_worker: role fan-out failed")
		}
		for _, u := range users {
			recipients = append(recipients, u.ID)
		}
	}

	var entityRef *string
	if payload.EntityRef != "" {
		entityRef = &payload.EntityRef
	}

	for _, uid := range recipients {
		n := &model.Notification{
			UserID:    uid,
			Tipo:      payload.Tipo,
			Titulo:    payload.Titulo,
			Cuerpo:    payload.Cuerpo,
			EntityRef: entityRef,
		}
		if err := w.notificationRepo.Create(ctx, n); err != nil {
			log.Error().Err(err).Str("user_id", uid.String()).Msg("notification_worker: create row failed")
		}
	}
}
