package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// IdempotencyKeyHeader lets a client retry a payment without recording it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// InvoiceHandler handles invoice and payment endpoints
type InvoiceHandler struct {
	BaseHandler
	documentService DocumentService
	paymentService  PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(documentService DocumentService, paymentService PaymentService) *InvoiceHandler {
	return &InvoiceHandler{
		documentService: documentService,
		paymentService:  paymentService,
	}
}

// Create godoc
// @Summary      Create a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        request body invoicingapp.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.documentService.CreateInvoice(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// Get godoc
// @Summary      Get an invoice with its payment status
// @Tags         invoices
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.documentService.GetInvoice(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	for _, key := range []string{"status", "payment_status", "customer_id"} {
		if value := c.Query(key); value != "" {
			filter.Filters[key] = value
		}
	}

	result, err := h.documentService.ListInvoices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Send godoc
// @Summary      Finalize a draft invoice
// @Tags         invoices
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.documentService.SendInvoice(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Cancel godoc
// @Summary      Cancel an invoice
// @Tags         invoices
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.documentService.CancelInvoice(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RecordPayment godoc
// @Summary      Record a payment on an invoice
// @Description  A repeated Idempotency-Key returns the invoice without recording again.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        id path string true "Invoice ID"
// @Param        request body invoicingapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoicingapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	invoice, err := h.paymentService.RecordPayment(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// VoidPayment godoc
// @Summary      Void a recorded payment
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Invoice ID"
// @Param        index path int true "Payment index"
// @Param        request body invoicingapp.VoidPaymentRequest false "Reason"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /invoices/{id}/payments/{index} [delete]
func (h *InvoiceHandler) VoidPayment(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	index, ok := h.intParam(c, "index")
	if !ok {
		return
	}

	var req invoicingapp.VoidPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return
	}

	invoice, err := h.paymentService.VoidPayment(c.Request.Context(), tenantID, id, index, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}
