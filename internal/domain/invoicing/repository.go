package invoicing

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
)

// QuotationRepository defines the interface for quotation persistence
type QuotationRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Quotation, error)
	// FindDraftsByCustomer returns the draft quotations embedding the customer
	FindDraftsByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Quotation, error)
	Create(ctx context.Context, q *Quotation) error
	// SaveWithLock persists q if the stored row is still at q.StoredVersion(),
	// otherwise returns shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, q *Quotation) error
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindDraftsByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Invoice, int64, error)
	Create(ctx context.Context, inv *Invoice) error
	// SaveWithLock persists items, totals, status and the payment ledger in
	// one conditional update keyed on the version
	SaveWithLock(ctx context.Context, inv *Invoice) error
}

// CreditNoteRepository defines the interface for credit note persistence
type CreditNoteRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CreditNote, error)
	// FindDraftsByInvoice returns the draft credit notes linked to the invoice
	FindDraftsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*CreditNote, error)
	Create(ctx context.Context, note *CreditNote) error
	SaveWithLock(ctx context.Context, note *CreditNote) error
}

// DebitNoteRepository defines the interface for debit note persistence
type DebitNoteRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DebitNote, error)
	FindDraftsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*DebitNote, error)
	Create(ctx context.Context, note *DebitNote) error
	SaveWithLock(ctx context.Context, note *DebitNote) error
}

// DocumentTransactions persists changes spanning two documents atomically,
// each under its own version check.
type DocumentTransactions interface {
	SaveCreditNoteApplication(ctx context.Context, inv *Invoice, note *CreditNote) error
	SaveDebitNoteApplication(ctx context.Context, inv *Invoice, note *DebitNote) error
	// SaveQuotationConversion inserts the new invoice and saves the converted quotation
	SaveQuotationConversion(ctx context.Context, q *Quotation, inv *Invoice) error
}

// SnapshotWriter persists a rewritten snapshot together with its audit entry
type SnapshotWriter interface {
	// ApplySnapshot updates doc's snapshot under a version check and
	// appends entry, in one transaction
	ApplySnapshot(ctx context.Context, doc *Document, entry *SnapshotAuditLog) error
}

// SnapshotAuditRepository reads the snapshot audit trail
type SnapshotAuditRepository interface {
	// FindByDocument returns entries for the document, newest first
	FindByDocument(ctx context.Context, tenantID uuid.UUID, docType DocumentType, documentID uuid.UUID, filter shared.Filter) ([]SnapshotAuditLog, int64, error)
}
