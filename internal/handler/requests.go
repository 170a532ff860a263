package handler

import (
	"net/http"
	"strconv"

	"mercury/internal/dto"
	"mercury/internal/service"

	"github.com/gin-gonic/gin"
)

type RequestsHandler struct{ svc service.RequestService }

func NewRequestsHandler(svc service.RequestService) *RequestsHandler {
	return &RequestsHandler{svc: svc}
}

// Create godoc
// @Summary      Crear solicitud de importación
// @Description  Crea la solicitud en DRAFT (editable) o la envía de inmediato como PENDING.
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateRequestRequest true "Datos de la solicitud"
// @Success      201  {object} dto.RequestResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/requests [post]
func (h *RequestsHandler) Create(c *gin.Context) {
	var req dto.CreateRequestRequest
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

func (h *RequestsHandler) Get(c *gin.Context) {
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

// List godoc
// @Summary      Listar solicitudes
// @Description  Importadores ven solo su empresa; admins ven todas. Filtrable por estado.
// @Tags         solicitudes
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Estado"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 20)"
// @Success      200    {object} dto.RequestListResponse
// @Router       /v1/requests [get]
func (h *RequestsHandler) List(c *gin.Context) {
	filter := dto.RequestFilter{
		Status: c.Query("status"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.svc.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RequestsHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRequestRequest
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

// Submit moves a draft into the admin review queue.
func (h *RequestsHandler) Submit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdminUpdate godoc
// @Summary      Actualizar solicitud (admin)
// @Description  Cambia estado, asignación o notas de revisión. Las transiciones inválidas devuelven 400.
// @Tags         solicitudes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la solicitud"
// @Param        body body dto.AdminUpdateRequestRequest true "Cambios"
// @Success      200  {object} dto.RequestResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/requests/{id}/admin [patch]
func (h *RequestsHandler) AdminUpdate(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AdminUpdateRequestRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdminUpdate(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RequestsHandler) Delete(c *gin.Context) {
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
