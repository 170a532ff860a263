package handler

import (
	"net/http"
	"strconv"

	"mercury/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationsHandler struct {
	svc      service.NotificationService
	auditSvc service.AuditService
}

func NewNotificationsHandler(svc service.NotificationService, auditSvc service.AuditService) *NotificationsHandler {
	return &NotificationsHandler{svc: svc, auditSvc: auditSvc}
}

func (h *NotificationsHandler) ListMine(c *gin.Context) {
	onlyUnread := c.Query("unread") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifications, total, err := h.svc.ListMine(c.Request.Context(), actorFrom(c), onlyUnread, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications, "total": total, "page": page, "limit": limit})
}

func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationsHandler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllRead(c.Request.Context(), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationsHandler) CountUnread(c *gin.Context) {
	count, err := h.svc.CountUnread(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// ── Audit (admin) ────────────────────────────────────────────────────────────

func (h *NotificationsHandler) ListAudit(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, total, err := h.auditSvc.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": total, "page": page, "limit": limit})
}

func (h *NotificationsHandler) ListAuditByEntity(c *gin.Context) {
	entityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	entries, err := h.auditSvc.ListByEntity(c.Request.Context(), c.Param("entity"), entityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
