package handler

import (
	"io"
	"net/http"

	"mercury/internal/apierror"
	"mercury/internal/dto"
	"mercury/internal/model"
	"mercury/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentsHandler struct{ svc service.PaymentService }

func NewPaymentsHandler(svc service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// UploadProof godoc
// @Summary      Subir comprobante de pago
// @Description  Registra el pago del importador contra un contrato firmado, con su comprobante adjunto.
// @Tags         pagos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path     string true  "UUID del contrato"
// @Param        file   formData file   true  "Comprobante (PDF/JPG/PNG)"
// @Param        tipo   formData string false "PARTIAL o FINAL (default PARTIAL)"
// @Param        amount formData string false "Monto (default: monto del contrato)"
// @Success      201  {object} dto.UploadProofResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/contracts/{id}/payments [post]
func (h *PaymentsHandler) UploadProof(c *gin.Context) {
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	file, closer, ok := formFile(c)
	if !ok {
		return
	}
	defer closer.Close()

	tipo := model.PaymentType(c.PostForm("tipo"))
	if tipo != "" && tipo != model.PaymentTypePartial && tipo != model.PaymentTypeFinal {
		c.JSON(http.StatusBadRequest, apierror.New("tipo debe ser PARTIAL o FINAL"))
		return
	}
	var amount *decimal.Decimal
	if raw := c.PostForm("amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("amount invalido"))
			return
		}
		amount = &d
	}

	resp, err := h.svc.UploadPaymentProof(c.Request.Context(), actorFrom(c), contractID, tipo, amount, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Review godoc
// @Summary      Revisar pago
// @Description  APPROVE avanza el contrato; REJECT habilita un nuevo comprobante; MARK_PROVIDER_PAID registra el pago al proveedor.
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del pago"
// @Param        body body dto.ReviewPaymentRequest true "Decisión"
// @Success      200  {object} dto.ReviewPaymentResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/payments/{id}/review [post]
func (h *PaymentsHandler) Review(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Review(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UploadProviderProof attaches the provider settlement document.
func (h *PaymentsHandler) UploadProviderProof(c *gin.Context) {
	id, ok := pathUUID(c, "id")
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
	resp, err := h.svc.UploadProviderProof(c.Request.Context(), actorFrom(c), id, file, notas)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordFinal godoc
// @Summary      Registrar pago final
// @Description  Registra el pago FINAL con su factura y completa el contrato y la solicitud.
// @Tags         pagos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path     string true "UUID del contrato"
// @Param        amount formData string true "Monto del pago final"
// @Param        file   formData file   true "Factura"
// @Success      201  {object} dto.UploadProofResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/contracts/{id}/final-payment [post]
func (h *PaymentsHandler) RecordFinal(c *gin.Context) {
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	file, closer, ok := formFile(c)
	if !ok {
		return
	}
	defer closer.Close()

	amount, err := decimal.NewFromString(c.PostForm("amount"))
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, apierror.New("amount invalido"))
		return
	}
	req := dto.FinalPaymentRequest{Amount: amount}
	if raw := c.PostForm("notas"); raw != "" {
		req.Notas = &raw
	}

	resp, err := h.svc.RecordFinalPayment(c.Request.Context(), actorFrom(c), contractID, req, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentsHandler) Get(c *gin.Context) {
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

func (h *PaymentsHandler) ListByContract(c *gin.Context) {
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

func (h *PaymentsHandler) ListPendingReview(c *gin.Context) {
	resp, err := h.svc.ListPendingReview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// formFile extracts the "file" multipart part as a service.FileUpload.
// Writes the 400 itself on failure; the caller closes the returned closer.
func formFile(c *gin.Context) (service.FileUpload, io.Closer, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("el archivo es requerido (campo file)"))
		return service.FileUpload{}, nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("no se pudo leer el archivo"))
		return service.FileUpload{}, nil, false
	}
	return service.FileUpload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Reader:   f,
	}, f, true
}
