package invoicing

import (
	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// Aggregate type constants
const (
	AggregateTypeQuotation  = "Quotation"
	AggregateTypeInvoice    = "Invoice"
	AggregateTypeCreditNote = "CreditNote"
	AggregateTypeDebitNote  = "DebitNote"
)

// Event type constants
const (
	EventTypeDocumentCreated   = "DocumentCreated"
	EventTypePaymentRecorded   = "PaymentRecorded"
	EventTypePaymentVoided     = "PaymentVoided"
	EventTypeCreditNoteApplied = "CreditNoteApplied"
	EventTypeDebitNoteApplied  = "DebitNoteApplied"
)

func aggregateTypeOf(t DocumentType) string {
	switch t {
	case DocumentTypeQuotation:
		return AggregateTypeQuotation
	case DocumentTypeCreditNote:
		return AggregateTypeCreditNote
	case DocumentTypeDebitNote:
		return AggregateTypeDebitNote
	default:
		return AggregateTypeInvoice
	}
}

// DocumentCreatedEvent is published when a numbered document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType      `json:"document_type"`
	Number       string            `json:"number"`
	CustomerID   uuid.UUID         `json:"customer_id"`
	Total        valueobject.Money `json:"total"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(doc *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, aggregateTypeOf(doc.Type), doc.ID, doc.TenantID),
		DocumentType:    doc.Type,
		Number:          doc.Number,
		CustomerID:      doc.CustomerID,
		Total:           doc.Totals.Total,
	}
}

// PaymentRecordedEvent is published when a payment is appended to an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string            `json:"invoice_number"`
	Amount        valueobject.Money `json:"amount"`
	Method        PaymentMethod     `json:"method"`
	Reference     string            `json:"reference,omitempty"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(inv *Invoice, payment Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:   inv.Number,
		Amount:          payment.Amount,
		Method:          payment.Method,
		Reference:       payment.Reference,
		PaymentStatus:   inv.PaymentStatus,
	}
}

// PaymentVoidedEvent is published when a payment is removed from an invoice
type PaymentVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string            `json:"invoice_number"`
	Index         int               `json:"index"`
	Amount        valueobject.Money `json:"amount"`
	Reason        string            `json:"reason,omitempty"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
}

// NewPaymentVoidedEvent creates a new PaymentVoidedEvent
func NewPaymentVoidedEvent(inv *Invoice, payment Payment, index int, reason string) *PaymentVoidedEvent {
	return &PaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVoided, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:   inv.Number,
		Index:           index,
		Amount:          payment.Amount,
		Reason:          reason,
		PaymentStatus:   inv.PaymentStatus,
	}
}

// CreditNoteAppliedEvent is published when a credit note is posted to its invoice
type CreditNoteAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber    string            `json:"invoice_number"`
	CreditNoteID     uuid.UUID         `json:"credit_note_id"`
	CreditNoteNumber string            `json:"credit_note_number"`
	Amount           valueobject.Money `json:"amount"`
	PaymentStatus    PaymentStatus     `json:"payment_status"`
}

// NewCreditNoteAppliedEvent creates a new CreditNoteAppliedEvent
func NewCreditNoteAppliedEvent(inv *Invoice, note *CreditNote) *CreditNoteAppliedEvent {
	return &CreditNoteAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditNoteApplied, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:    inv.Number,
		CreditNoteID:     note.ID,
		CreditNoteNumber: note.Number,
		Amount:           note.Total(),
		PaymentStatus:    inv.PaymentStatus,
	}
}

// DebitNoteAppliedEvent is published when a debit note raises its invoice total
type DebitNoteAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber   string            `json:"invoice_number"`
	DebitNoteID     uuid.UUID         `json:"debit_note_id"`
	DebitNoteNumber string            `json:"debit_note_number"`
	Amount          valueobject.Money `json:"amount"`
	NewTotal        valueobject.Money `json:"new_total"`
	PaymentStatus   PaymentStatus     `json:"payment_status"`
}

// NewDebitNoteAppliedEvent creates a new DebitNoteAppliedEvent
func NewDebitNoteAppliedEvent(inv *Invoice, note *DebitNote) *DebitNoteAppliedEvent {
	return &DebitNoteAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebitNoteApplied, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:   inv.Number,
		DebitNoteID:     note.ID,
		DebitNoteNumber: note.Number,
		Amount:          note.Total(),
		NewTotal:        inv.Total(),
		PaymentStatus:   inv.PaymentStatus,
	}
}
