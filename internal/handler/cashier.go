package handler

import (
	"net/http"

	"mercury/internal/dto"
	"mercury/internal/service"

	"github.com/gin-gonic/gin"
)

type CashierHandler struct{ svc service.CashierService }

func NewCashierHandler(svc service.CashierService) *CashierHandler {
	return &CashierHandler{svc: svc}
}

// AvailableQuotations godoc
// @Summary      Cotizaciones disponibles
// @Description  Cotizaciones aceptadas con saldo en Bs por asignar.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.AvailableQuotationResponse
// @Router       /v1/cashier/quotations [get]
func (h *CashierHandler) AvailableQuotations(c *gin.Context) {
	resp, err := h.svc.AvailableQuotations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Participate godoc
// @Summary      Participar en una cotización
// @Description  Reclama una porción del saldo en Bs contra una cuenta asignada, respetando el límite diario.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la cotización"
// @Param        body body dto.ParticipateRequest true "Monto y cuenta"
// @Success      201  {object} dto.CashierTransactionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/cashier/quotations/{id}/participate [post]
func (h *CashierHandler) Participate(c *gin.Context) {
	quotationID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ParticipateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Participate(c.Request.Context(), actorFrom(c), quotationID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CashierHandler) Start(c *gin.Context) {
	txID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Start(c.Request.Context(), actorFrom(c), txID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary      Completar transacción
// @Description  Registra los USDT entregados; la respuesta incluye el slippage contra lo esperado.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la transacción"
// @Param        body body dto.CompleteTransactionRequest true "USDT entregados"
// @Success      200  {object} dto.CashierTransactionResponse
// @Router       /v1/cashier/transactions/{id}/complete [post]
func (h *CashierHandler) Complete(c *gin.Context) {
	txID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CompleteTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Complete(c.Request.Context(), actorFrom(c), txID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashierHandler) Cancel(c *gin.Context) {
	txID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), actorFrom(c), txID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashierHandler) ListMine(c *gin.Context) {
	resp, err := h.svc.ListMine(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DailyUsage godoc
// @Summary      Consumo diario por cuenta
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.DailyUsageResponse
// @Router       /v1/cashier/daily-usage [get]
func (h *CashierHandler) DailyUsage(c *gin.Context) {
	resp, err := h.svc.DailyUsage(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Admin: accounts ──────────────────────────────────────────────────────────

func (h *CashierHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateCashierAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateAccount(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CashierHandler) ListAccounts(c *gin.Context) {
	resp, err := h.svc.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CashierHandler) AssignAccount(c *gin.Context) {
	accountID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AssignAccount(c.Request.Context(), actorFrom(c), accountID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
