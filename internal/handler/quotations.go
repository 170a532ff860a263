package handler

import (
	"net/http"

	"mercury/internal/dto"
	"mercury/internal/service"

	"github.com/gin-gonic/gin"
)

type QuotationsHandler struct{ svc service.QuotationService }

func NewQuotationsHandler(svc service.QuotationService) *QuotationsHandler {
	return &QuotationsHandler{svc: svc}
}

// Create godoc
// @Summary      Crear cotización
// @Description  Crea una cotización DRAFT para una solicitud pendiente o en revisión.
// @Tags         cotizaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateQuotationRequest true "Datos de la cotización"
// @Success      201  {object} dto.QuotationResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/quotations [post]
func (h *QuotationsHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *QuotationsHandler) Get(c *gin.Context) {
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

func (h *QuotationsHandler) ListByRequest(c *gin.Context) {
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

func (h *QuotationsHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateQuotationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuotationsHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Send godoc
// @Summary      Enviar cotización
// @Description  Publica la cotización al importador: correo con PDF adjunto y notificación in-app.
// @Tags         cotizaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la cotización"
// @Success      200  {object} dto.QuotationResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/quotations/{id}/send [post]
func (h *QuotationsHandler) Send(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Send(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Respond godoc
// @Summary      Responder cotización
// @Description  El importador acepta o rechaza. Al tercer rechazo la solicitud se cancela automáticamente.
// @Tags         cotizaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la cotización"
// @Param        body body dto.RespondQuotationRequest true "Decisión"
// @Success      200  {object} dto.RespondQuotationResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/quotations/{id}/respond [post]
func (h *QuotationsHandler) Respond(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RespondQuotationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Respond(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
