package v1

import (
	"net/http"

	"github.com/agencyops/agencyops/internal/api/dto"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/logger"
	"github.com/agencyops/agencyops/internal/service"
	"github.com/agencyops/agencyops/internal/types"
	"github.com/gin-gonic/gin"
)

type ReceiptHandler struct {
	service service.ReceiptService
	logger  *logger.Logger
}

func NewReceiptHandler(service service.ReceiptService, logger *logger.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Generate a receipt
// @Description Record a payment against an invoice and render its receipt
// @Tags Receipts
// @Accept json
// @Produce json
// @Param receipt body dto.GenerateReceiptRequest true "Receipt"
// @Success 201 {object} dto.GenerateReceiptResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /receipts/generate [post]
func (h *ReceiptHandler) GenerateReceipt(c *gin.Context) {
	var req dto.GenerateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GenerateReceipt(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a receipt
// @Tags Receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	resp, err := h.service.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List receipts
// @Tags Receipts
// @Produce json
// @Param filter query types.ReceiptFilter false "Filter"
// @Success 200 {object} dto.ListReceiptsResponse
// @Router /receipts [get]
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	filter := types.NewReceiptFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a receipt
// @Tags Receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /receipts/{id} [delete]
func (h *ReceiptHandler) DeleteReceipt(c *gin.Context) {
	if err := h.service.DeleteReceipt(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Receipt deleted successfully"})
}

// @Summary Serve a receipt document
// @Tags Receipts
// @Produce application/pdf
// @Param name path string true "File name"
// @Success 200 {file} file
// @Router /receipts/file/{name} [get]
func (h *ReceiptHandler) ServeReceiptFile(c *gin.Context) {
	f, err := h.service.OpenReceiptFile(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	serveDocument(c, f, false)
}
