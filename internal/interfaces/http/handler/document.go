package handler

import (
	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// DocumentHandler serves the endpoints shared by every document type.
// Each method returns a gin handler bound to one type, so routes can use
// concrete prefixes such as /invoices/:id/items.
type DocumentHandler struct {
	BaseHandler
	documentService DocumentService
	snapshotService SnapshotService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService DocumentService, snapshotService SnapshotService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		snapshotService: snapshotService,
	}
}

// UpdateItems godoc
// @Summary      Replace the items of a draft document
// @Description  Totals are recomputed from the items; derived amounts in the request are ignored.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Document ID"
// @Param        request body invoicingapp.UpdateItemsRequest true "Items"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices/{id}/items [put]
func (h *DocumentHandler) UpdateItems(docType invoicing.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}

		var req invoicingapp.UpdateItemsRequest
		if !h.bindJSON(c, &req) {
			return
		}

		doc, err := h.documentService.UpdateItems(c.Request.Context(), tenantID, docType, id, req)
		if err != nil {
			h.HandleError(c, err)
			return
		}

		h.Success(c, doc)
	}
}

// RefreshSnapshot godoc
// @Summary      Copy the current customer data into a draft document
// @Tags         documents
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        X-User-ID header string false "Actor recorded in the audit"
// @Param        id path string true "Document ID"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices/{id}/snapshot/refresh [post]
func (h *DocumentHandler) RefreshSnapshot(docType invoicing.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}

		result, err := h.snapshotService.RefreshSnapshot(c.Request.Context(), tenantID, docType, id, middleware.GetActor(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}

		h.Success(c, result)
	}
}

// ListSnapshotAudits godoc
// @Summary      List the snapshot audit trail of a document, newest first
// @Tags         documents
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Document ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /invoices/{id}/snapshot/audits [get]
func (h *DocumentHandler) ListSnapshotAudits(docType invoicing.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, ok := h.tenantID(c)
		if !ok {
			return
		}
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		filter, ok := h.listFilter(c)
		if !ok {
			return
		}

		result, err := h.snapshotService.ListSnapshotAudits(c.Request.Context(), tenantID, docType, id, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}

		h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
	}
}
