package invoicing

import "github.com/invoicing/backend/internal/domain/shared"

// Invoicing domain errors
var (
	ErrDocumentNotFound     = shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document not found")
	ErrInvoiceNotFound      = shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	ErrAlreadyApplied       = shared.NewDomainError("ALREADY_APPLIED", "Note has already been applied")
	ErrInvalidPaymentAmount = shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Invalid payment amount")
	ErrPaymentNotFound      = shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	ErrDocumentNotDraft     = shared.NewDomainError("DOCUMENT_NOT_DRAFT", "Only draft documents can be modified")
	ErrInvalidTransition    = shared.NewDomainError("INVALID_STATE", "Status transition not allowed")
	ErrInvalidItem          = shared.NewDomainError("INVALID_ITEM", "Invalid document item")
	ErrInvalidDocumentType  = shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Invalid document type")
	ErrInvalidPaymentMethod = shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	ErrNoteInvoiceMismatch  = shared.NewDomainError("NOTE_INVOICE_MISMATCH", "Note does not belong to this invoice")
	ErrEmptyDocument        = shared.NewDomainError("EMPTY_DOCUMENT", "Document must have at least one item")
	ErrPaymentInProgress    = shared.NewDomainError("PAYMENT_IN_PROGRESS", "A payment with this idempotency key is still being processed")
)
