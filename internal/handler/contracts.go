package handler

import (
	"net/http"
	"strconv"

	"mercury/internal/apierror"
	"mercury/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContractsHandler struct{ svc service.ContractService }

func NewContractsHandler(svc service.ContractService) *ContractsHandler {
	return &ContractsHandler{svc: svc}
}

type createContractRequest struct {
	QuotationID string `json:"quotation_id" validate:"required,uuid"`
}

type cancelContractRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// Create godoc
// @Summary      Generar contrato
// @Description  Genera el contrato único de una cotización aceptada.
// @Tags         contratos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body handler.createContractRequest true "Cotización origen"
// @Success      201  {object} dto.ContractResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/contracts [post]
func (h *ContractsHandler) Create(c *gin.Context) {
	var req createContractRequest
	if !bindAndValidate(c, &req) {
		return
	}
	quotationID, ok := parseUUIDField(c, req.QuotationID, "quotation_id")
	if !ok {
		return
	}
	resp, err := h.svc.CreateFromQuotation(c.Request.Context(), actorFrom(c), quotationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ContractsHandler) Get(c *gin.Context) {
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

func (h *ContractsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.List(c.Request.Context(), actorFrom(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sign godoc
// @Summary      Firmar contrato
// @Tags         contratos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del contrato"
// @Success      200  {object} dto.ContractResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/contracts/{id}/sign [post]
func (h *ContractsHandler) Sign(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Sign(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContractsHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req cancelContractRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), actorFrom(c), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseUUIDField parses a validated body field as UUID; writes the 400 itself.
func parseUUIDField(c *gin.Context, raw, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return uuid.Nil, false
	}
	return id, true
}
