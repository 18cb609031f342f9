package invoicing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
)

// Note is the part credit and debit notes share: a priced document
// linked to one invoice whose balance it changes once applied.
type Note struct {
	Document
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Reason        string
	AppliedAt     *time.Time
}

// CreditNote reduces what is owed on its invoice. Applying it posts a
// credit_note payment to the invoice's ledger.
type CreditNote struct {
	Note
}

// DebitNote adds charges to its invoice. Applying it raises the invoice total.
type DebitNote struct {
	Note
}

// NewCreditNote creates a draft credit note for the invoice
func NewCreditNote(invoice *Invoice, header DocumentHeader, items []ItemInput, reason string) (*CreditNote, error) {
	note, err := newNote(invoice, DocumentTypeCreditNote, header, items, reason)
	if err != nil {
		return nil, err
	}
	cn := &CreditNote{Note: note}
	cn.AddDomainEvent(NewDocumentCreatedEvent(&cn.Document))
	return cn, nil
}

// NewDebitNote creates a draft debit note for the invoice
func NewDebitNote(invoice *Invoice, header DocumentHeader, items []ItemInput, reason string) (*DebitNote, error) {
	note, err := newNote(invoice, DocumentTypeDebitNote, header, items, reason)
	if err != nil {
		return nil, err
	}
	dn := &DebitNote{Note: note}
	dn.AddDomainEvent(NewDocumentCreatedEvent(&dn.Document))
	return dn, nil
}

func newNote(invoice *Invoice, docType DocumentType, header DocumentHeader, items []ItemInput, reason string) (Note, error) {
	if invoice.Status == DocumentStatusCancelled {
		return Note{}, shared.NewDomainError(ErrInvalidTransition.Code, "cannot create a note for a cancelled invoice")
	}
	// A note always bills the invoice's customer in the invoice's currency.
	header.CustomerID = invoice.CustomerID
	header.Currency = invoice.Currency

	doc, err := newDocument(invoice.TenantID, docType, header, items)
	if err != nil {
		return Note{}, err
	}
	return Note{
		Document:      doc,
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.Number,
		Reason:        strings.TrimSpace(reason),
	}, nil
}

// IsApplied returns true once the note's effect is posted to the invoice
func (n *Note) IsApplied() bool {
	return n.Status == DocumentStatusApplied
}

// Issue finalizes a draft note
func (n *Note) Issue() error {
	if !n.IsDraft() {
		return shared.NewDomainError(ErrInvalidTransition.Code, "only draft notes can be issued")
	}
	if len(n.Items) == 0 {
		return ErrEmptyDocument
	}
	n.Status = DocumentStatusIssued
	n.IncrementVersion()
	return nil
}

// Cancel cancels a note that has not been applied
func (n *Note) Cancel() error {
	if n.IsApplied() {
		return ErrAlreadyApplied
	}
	if n.Status == DocumentStatusCancelled {
		return shared.NewDomainError(ErrInvalidTransition.Code, "note is already cancelled")
	}
	n.Status = DocumentStatusCancelled
	n.IncrementVersion()
	return nil
}

// checkApplicable verifies the note can be applied to the invoice
func (n *Note) checkApplicable(invoice *Invoice) error {
	if n.IsApplied() {
		return ErrAlreadyApplied
	}
	if n.Status == DocumentStatusCancelled {
		return shared.NewDomainError(ErrInvalidTransition.Code, "cancelled notes cannot be applied")
	}
	if n.InvoiceID != invoice.ID || n.TenantID != invoice.TenantID {
		return ErrNoteInvoiceMismatch
	}
	if !n.Total().IsPositive() {
		return shared.NewDomainError(ErrInvalidPaymentAmount.Code, "note total must be positive")
	}
	return nil
}

func (n *Note) markApplied(at time.Time) {
	n.Status = DocumentStatusApplied
	n.AppliedAt = &at
	n.IncrementVersion()
}
