package handler

import (
	"net/http"

	"mercury/internal/service"

	"github.com/gin-gonic/gin"
)

type DocumentsHandler struct{ svc service.DocumentService }

func NewDocumentsHandler(svc service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{svc: svc}
}

// UploadForRequest attaches a backing document (invoice, proforma, spec)
// to a request.
func (h *DocumentsHandler) UploadForRequest(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	file, closer, ok := formFile(c)
	if !ok {
		return
	}
	defer closer.Close()

	var notas *string
	if raw := c.PostForm("notas"); raw != "" {
		notas = &raw
	}
	resp, err := h.svc.UploadForRequest(c.Request.Context(), actorFrom(c), requestID, file, notas)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DocumentsHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentsHandler) ListByRequest(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListByRequest(c.Request.Context(), actorFrom(c), requestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentsHandler) ListByContract(c *gin.Context) {
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListByContract(c.Request.Context(), actorFrom(c), contractID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
