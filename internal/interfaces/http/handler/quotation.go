package handler

import (
	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
)

// QuotationHandler handles quotation endpoints
type QuotationHandler struct {
	BaseHandler
	documentService DocumentService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(documentService DocumentService) *QuotationHandler {
	return &QuotationHandler{documentService: documentService}
}

// Create godoc
// @Summary      Create a draft quotation
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        request body invoicingapp.CreateQuotationRequest true "Quotation"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /quotations [post]
func (h *QuotationHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quotation, err := h.documentService.CreateQuotation(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, quotation)
}

// Get godoc
// @Summary      Get a quotation
// @Tags         quotations
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Quotation ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /quotations/{id} [get]
func (h *QuotationHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	quotation, err := h.documentService.GetQuotation(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quotation)
}

// Transition godoc
// @Summary      Move a quotation to a new status
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Quotation ID"
// @Param        request body invoicingapp.TransitionQuotationRequest true "Target status"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /quotations/{id}/status [post]
func (h *QuotationHandler) Transition(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoicingapp.TransitionQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quotation, err := h.documentService.TransitionQuotation(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quotation)
}

// Convert godoc
// @Summary      Convert an accepted quotation into a draft invoice
// @Tags         quotations
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Quotation ID"
// @Success      201 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /quotations/{id}/convert [post]
func (h *QuotationHandler) Convert(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.documentService.ConvertQuotation(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}
