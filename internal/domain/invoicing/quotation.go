package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
)

// quotationTransitions lists the allowed quotation status changes
var quotationTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:    {DocumentStatusSent, DocumentStatusCancelled},
	DocumentStatusSent:     {DocumentStatusAccepted, DocumentStatusRejected, DocumentStatusExpired},
	DocumentStatusAccepted: {DocumentStatusConverted},
}

// Quotation is a priced offer that can be converted into an invoice
type Quotation struct {
	Document
	ValidUntil         *time.Time
	ConvertedInvoiceID *uuid.UUID
}

// NewQuotation creates a draft quotation and prices its items
func NewQuotation(tenantID uuid.UUID, header DocumentHeader, items []ItemInput, validUntil *time.Time) (*Quotation, error) {
	doc, err := newDocument(tenantID, DocumentTypeQuotation, header, items)
	if err != nil {
		return nil, err
	}
	q := &Quotation{Document: doc, ValidUntil: validUntil}

	q.AddDomainEvent(NewDocumentCreatedEvent(&q.Document))

	return q, nil
}

// Transition moves the quotation to target. Converted is only reachable
// through MarkConverted.
func (q *Quotation) Transition(target DocumentStatus) error {
	if target == DocumentStatusConverted {
		return shared.NewDomainError(ErrInvalidTransition.Code, "use conversion to mark a quotation converted")
	}
	if target == DocumentStatusSent && len(q.Items) == 0 {
		return ErrEmptyDocument
	}
	return q.transition(target)
}

// MarkConverted records the invoice created from this accepted quotation
func (q *Quotation) MarkConverted(invoiceID uuid.UUID) error {
	if err := q.transition(DocumentStatusConverted); err != nil {
		return err
	}
	q.ConvertedInvoiceID = &invoiceID
	return nil
}

func (q *Quotation) transition(target DocumentStatus) error {
	for _, allowed := range quotationTransitions[q.Status] {
		if allowed == target {
			q.Status = target
			q.IncrementVersion()
			return nil
		}
	}
	return shared.NewDomainError(ErrInvalidTransition.Code,
		"quotation cannot move from "+string(q.Status)+" to "+string(target))
}
