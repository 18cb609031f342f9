package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// DocumentType identifies one of the four numbered document kinds
type DocumentType string

const (
	DocumentTypeQuotation  DocumentType = "quotation"
	DocumentTypeInvoice    DocumentType = "invoice"
	DocumentTypeCreditNote DocumentType = "credit_note"
	DocumentTypeDebitNote  DocumentType = "debit_note"
)

// AllDocumentTypes lists every document type
var AllDocumentTypes = []DocumentType{
	DocumentTypeQuotation,
	DocumentTypeInvoice,
	DocumentTypeCreditNote,
	DocumentTypeDebitNote,
}

// ParseDocumentType validates a document type string
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !t.IsValid() {
		return "", shared.NewDomainError(ErrInvalidDocumentType.Code, "invalid document type "+s)
	}
	return t, nil
}

// IsValid returns true if the type is one of the known document types
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeQuotation, DocumentTypeInvoice, DocumentTypeCreditNote, DocumentTypeDebitNote:
		return true
	}
	return false
}

// String returns the string representation
func (t DocumentType) String() string {
	return string(t)
}

// DocumentStatus is the lifecycle status of a document.
// Which statuses apply depends on the document type.
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusSent      DocumentStatus = "sent"
	DocumentStatusAccepted  DocumentStatus = "accepted"
	DocumentStatusRejected  DocumentStatus = "rejected"
	DocumentStatusExpired   DocumentStatus = "expired"
	DocumentStatusConverted DocumentStatus = "converted"
	DocumentStatusIssued    DocumentStatus = "issued"
	DocumentStatusApplied   DocumentStatus = "applied"
	DocumentStatusCancelled DocumentStatus = "cancelled"
)

// Document holds what every quotation, invoice and note has in common:
// a number, a frozen customer snapshot and calculator-derived totals.
type Document struct {
	shared.TenantAggregateRoot
	Type       DocumentType
	Number     string
	CustomerID uuid.UUID
	Customer   partner.CustomerSnapshot
	Currency   valueobject.Currency
	Items      []DocumentItem
	Totals     DocumentTotals
	Status     DocumentStatus
	IssueDate  time.Time
	DueDate    *time.Time
	Notes      string
}

// DocumentHeader carries the authored fields needed to create a document
type DocumentHeader struct {
	Number     string
	CustomerID uuid.UUID
	Customer   partner.CustomerSnapshot
	Currency   valueobject.Currency
	IssueDate  time.Time
	DueDate    *time.Time
	Notes      string
}

func newDocument(tenantID uuid.UUID, docType DocumentType, header DocumentHeader, inputs []ItemInput) (Document, error) {
	if !header.Currency.IsValid() {
		return Document{}, shared.NewDomainError(valueobject.ErrUnsupportedCurrency.Code, "unsupported currency code "+string(header.Currency))
	}
	if header.Number == "" {
		return Document{}, shared.NewDomainError("INVALID_NUMBER", "Document number is required")
	}
	if header.CustomerID == uuid.Nil {
		return Document{}, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}

	items, totals, err := PriceItems(inputs, header.Currency)
	if err != nil {
		return Document{}, err
	}

	issueDate := header.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	return Document{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                docType,
		Number:              header.Number,
		CustomerID:          header.CustomerID,
		Customer:            header.Customer.Clone(),
		Currency:            header.Currency,
		Items:               items,
		Totals:              totals,
		Status:              DocumentStatusDraft,
		IssueDate:           issueDate,
		DueDate:             header.DueDate,
		Notes:               header.Notes,
	}, nil
}

// IsDraft returns true while the document can still be edited and synced
func (d *Document) IsDraft() bool {
	return d.Status == DocumentStatusDraft
}

// Total returns the calculator total of the items
func (d *Document) Total() valueobject.Money {
	return d.Totals.Total
}

// SetItems replaces the items and recomputes every derived amount.
// Totals cannot be set any other way.
func (d *Document) SetItems(inputs []ItemInput) error {
	if !d.IsDraft() {
		return ErrDocumentNotDraft
	}
	items, totals, err := PriceItems(inputs, d.Currency)
	if err != nil {
		return err
	}
	d.Items = items
	d.Totals = totals
	d.IncrementVersion()
	return nil
}

// ReplaceSnapshot overwrites the customer snapshot of a draft document
func (d *Document) ReplaceSnapshot(snapshot partner.CustomerSnapshot) error {
	if !d.IsDraft() {
		return ErrDocumentNotDraft
	}
	d.Customer = snapshot.Clone()
	d.IncrementVersion()
	return nil
}

// DocumentRef identifies a document across types
type DocumentRef struct {
	Type   DocumentType `json:"type"`
	ID     uuid.UUID    `json:"id"`
	Number string       `json:"number"`
}

// Ref returns a reference to this document
func (d *Document) Ref() DocumentRef {
	return DocumentRef{Type: d.Type, ID: d.ID, Number: d.Number}
}
