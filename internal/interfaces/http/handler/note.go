package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	"github.com/invoicing/backend/internal/domain/invoicing"
)

// NoteHandler handles credit and debit note endpoints. One handler serves
// one note type.
type NoteHandler struct {
	BaseHandler
	docType         invoicing.DocumentType
	documentService DocumentService
	noteService     NoteService
}

// NewCreditNoteHandler creates a NoteHandler for credit notes
func NewCreditNoteHandler(documentService DocumentService, noteService NoteService) *NoteHandler {
	return &NoteHandler{
		docType:         invoicing.DocumentTypeCreditNote,
		documentService: documentService,
		noteService:     noteService,
	}
}

// NewDebitNoteHandler creates a NoteHandler for debit notes
func NewDebitNoteHandler(documentService DocumentService, noteService NoteService) *NoteHandler {
	return &NoteHandler{
		docType:         invoicing.DocumentTypeDebitNote,
		documentService: documentService,
		noteService:     noteService,
	}
}

// DocumentType returns the note type this handler serves
func (h *NoteHandler) DocumentType() invoicing.DocumentType {
	return h.docType
}

func (h *NoteHandler) create(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateNoteRequest) (*invoicingapp.NoteResponse, error) {
	if h.docType == invoicing.DocumentTypeDebitNote {
		return h.documentService.CreateDebitNote(ctx, tenantID, req)
	}
	return h.documentService.CreateCreditNote(ctx, tenantID, req)
}

func (h *NoteHandler) apply(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.NoteApplicationResponse, error) {
	if h.docType == invoicing.DocumentTypeDebitNote {
		return h.noteService.ApplyDebitNote(ctx, tenantID, id)
	}
	return h.noteService.ApplyCreditNote(ctx, tenantID, id)
}

// Create godoc
// @Summary      Create a draft note against an invoice
// @Tags         notes
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        request body invoicingapp.CreateNoteRequest true "Note"
// @Success      201 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /credit-notes [post]
// @Router       /debit-notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateNoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	note, err := h.create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, note)
}

// Get godoc
// @Summary      Get a note
// @Tags         notes
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Note ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /credit-notes/{id} [get]
// @Router       /debit-notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.documentService.GetNote(c.Request.Context(), tenantID, h.docType, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, note)
}

// Issue godoc
// @Summary      Issue a draft note
// @Tags         notes
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Note ID"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /credit-notes/{id}/issue [post]
// @Router       /debit-notes/{id}/issue [post]
func (h *NoteHandler) Issue(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.documentService.IssueNote(c.Request.Context(), tenantID, h.docType, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, note)
}

// Cancel godoc
// @Summary      Cancel a note that has not been applied
// @Tags         notes
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Note ID"
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /credit-notes/{id}/cancel [post]
// @Router       /debit-notes/{id}/cancel [post]
func (h *NoteHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.documentService.CancelNote(c.Request.Context(), tenantID, h.docType, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, note)
}

// Apply godoc
// @Summary      Apply an issued note to its invoice
// @Description  A credit note is recorded as a payment; a debit note raises the invoice total.
// @Tags         notes
// @Produce      json
// @Param        X-Tenant-ID header string true "Company ID"
// @Param        id path string true "Note ID"
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /credit-notes/{id}/apply [post]
// @Router       /debit-notes/{id}/apply [post]
func (h *NoteHandler) Apply(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.apply(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
