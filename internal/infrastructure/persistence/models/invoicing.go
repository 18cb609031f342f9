package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// DocumentTable returns the table holding documents of docType
func DocumentTable(docType invoicing.DocumentType) (string, bool) {
	switch docType {
	case invoicing.DocumentTypeQuotation:
		return QuotationModel{}.TableName(), true
	case invoicing.DocumentTypeInvoice:
		return InvoiceModel{}.TableName(), true
	case invoicing.DocumentTypeCreditNote:
		return CreditNoteModel{}.TableName(), true
	case invoicing.DocumentTypeDebitNote:
		return DebitNoteModel{}.TableName(), true
	}
	return "", false
}

// DocumentColumns holds the columns shared by every document table.
// Totals are stored in minor units of Currency.
type DocumentColumns struct {
	TenantAggregateModel
	Number           string                                    `gorm:"type:varchar(30);not null;index"`
	CustomerID       uuid.UUID                                 `gorm:"type:uuid;not null;index"`
	CustomerSnapshot JSONColumn[partner.CustomerSnapshot]      `gorm:"type:jsonb;not null"`
	Currency         string                                    `gorm:"type:varchar(3);not null"`
	Items            JSONColumn[[]invoicing.DocumentItem]      `gorm:"type:jsonb;not null"`
	SubtotalMinor    int64                                     `gorm:"not null;default:0"`
	TotalTaxMinor    int64                                     `gorm:"not null;default:0"`
	TotalMinor       int64                                     `gorm:"not null;default:0"`
	TaxBreakdown     JSONColumn[[]invoicing.TaxBreakdownEntry] `gorm:"type:jsonb"`
	Status           invoicing.DocumentStatus                  `gorm:"type:varchar(20);not null;index"`
	IssueDate        time.Time                                 `gorm:"not null"`
	DueDate          *time.Time
	Notes            string `gorm:"type:text"`
}

func (m *DocumentColumns) fromDomain(d *invoicing.Document) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Number = d.Number
	m.CustomerID = d.CustomerID
	m.CustomerSnapshot = NewJSONColumn(d.Customer)
	m.Currency = d.Currency.String()
	m.Items = NewJSONColumn(d.Items)
	m.SubtotalMinor = d.Totals.Subtotal.MinorUnits()
	m.TotalTaxMinor = d.Totals.TotalTax.MinorUnits()
	m.TotalMinor = d.Totals.Total.MinorUnits()
	m.TaxBreakdown = NewJSONColumn(d.Totals.TaxBreakdown)
	m.Status = d.Status
	m.IssueDate = d.IssueDate
	m.DueDate = d.DueDate
	m.Notes = d.Notes
}

func (m *DocumentColumns) toDomain(docType invoicing.DocumentType) (invoicing.Document, error) {
	currency := valueobject.Currency(m.Currency)
	subtotal, err := valueobject.NewMoney(m.SubtotalMinor, currency)
	if err != nil {
		return invoicing.Document{}, err
	}
	totalTax, err := valueobject.NewMoney(m.TotalTaxMinor, currency)
	if err != nil {
		return invoicing.Document{}, err
	}
	total, err := valueobject.NewMoney(m.TotalMinor, currency)
	if err != nil {
		return invoicing.Document{}, err
	}

	items := m.Items.V
	if items == nil {
		items = []invoicing.DocumentItem{}
	}
	breakdown := m.TaxBreakdown.V
	if breakdown == nil {
		breakdown = []invoicing.TaxBreakdownEntry{}
	}

	return invoicing.Document{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Type:                docType,
		Number:              m.Number,
		CustomerID:          m.CustomerID,
		Customer:            m.CustomerSnapshot.V.Clone(),
		Currency:            currency,
		Items:               items,
		Totals: invoicing.DocumentTotals{
			Subtotal:     subtotal,
			TotalTax:     totalTax,
			Total:        total,
			TaxBreakdown: breakdown,
		},
		Status:    m.Status,
		IssueDate: m.IssueDate,
		DueDate:   m.DueDate,
		Notes:     m.Notes,
	}, nil
}

// QuotationModel is the persistence model for quotations
type QuotationModel struct {
	DocumentColumns
	ValidUntil         *time.Time
	ConvertedInvoiceID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// QuotationModelFromDomain creates a new persistence model from a domain Quotation
func QuotationModelFromDomain(q *invoicing.Quotation) *QuotationModel {
	m := &QuotationModel{
		ValidUntil:         q.ValidUntil,
		ConvertedInvoiceID: q.ConvertedInvoiceID,
	}
	m.fromDomain(&q.Document)
	return m
}

// ToDomain converts the persistence model to a domain Quotation
func (m *QuotationModel) ToDomain() (*invoicing.Quotation, error) {
	doc, err := m.toDomain(invoicing.DocumentTypeQuotation)
	if err != nil {
		return nil, err
	}
	return &invoicing.Quotation{
		Document:           doc,
		ValidUntil:         m.ValidUntil,
		ConvertedInvoiceID: m.ConvertedInvoiceID,
	}, nil
}

// InvoiceModel is the persistence model for invoices. The payment ledger
// and debit adjustments are stored as jsonb. PaymentStatus and the amounts
// are written alongside so lists and receivables can filter and aggregate
// in SQL.
type InvoiceModel struct {
	DocumentColumns
	QuotationID     *uuid.UUID                         `gorm:"type:uuid"`
	Payments        JSONColumn[[]invoicing.Payment]    `gorm:"type:jsonb;not null"`
	Adjustments     JSONColumn[[]invoicing.Adjustment] `gorm:"type:jsonb;not null"`
	PaymentStatus   invoicing.PaymentStatus            `gorm:"type:varchar(20);not null;index"`
	AmountPaidMinor int64                              `gorm:"not null;default:0"`
	AmountDueMinor  int64                              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	payments := inv.Payments
	if payments == nil {
		payments = []invoicing.Payment{}
	}
	adjustments := inv.Adjustments
	if adjustments == nil {
		adjustments = []invoicing.Adjustment{}
	}
	m := &InvoiceModel{
		QuotationID:     inv.QuotationID,
		Payments:        NewJSONColumn(payments),
		Adjustments:     NewJSONColumn(adjustments),
		PaymentStatus:   inv.PaymentStatus,
		AmountPaidMinor: inv.AmountPaid.MinorUnits(),
		AmountDueMinor:  inv.AmountDue.MinorUnits(),
	}
	m.fromDomain(&inv.Document)
	return m
}

// ToDomain converts the persistence model to a domain Invoice. The payment
// state is derived from the ledger; the stored columns only serve queries.
func (m *InvoiceModel) ToDomain() (*invoicing.Invoice, error) {
	doc, err := m.toDomain(invoicing.DocumentTypeInvoice)
	if err != nil {
		return nil, err
	}
	return invoicing.RestoreInvoice(doc, m.Payments.V, m.Adjustments.V, m.QuotationID)
}

// NoteColumns holds the columns shared by credit and debit notes
type NoteColumns struct {
	DocumentColumns
	InvoiceID     uuid.UUID `gorm:"type:uuid;not null;index"`
	InvoiceNumber string    `gorm:"type:varchar(30);not null"`
	Reason        string    `gorm:"type:text"`
	AppliedAt     *time.Time
}

func (m *NoteColumns) fromNote(n *invoicing.Note) {
	m.fromDomain(&n.Document)
	m.InvoiceID = n.InvoiceID
	m.InvoiceNumber = n.InvoiceNumber
	m.Reason = n.Reason
	m.AppliedAt = n.AppliedAt
}

func (m *NoteColumns) toNote(docType invoicing.DocumentType) (invoicing.Note, error) {
	doc, err := m.toDomain(docType)
	if err != nil {
		return invoicing.Note{}, err
	}
	return invoicing.Note{
		Document:      doc,
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		Reason:        m.Reason,
		AppliedAt:     m.AppliedAt,
	}, nil
}

// CreditNoteModel is the persistence model for credit notes
type CreditNoteModel struct {
	NoteColumns
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// CreditNoteModelFromDomain creates a new persistence model from a domain CreditNote
func CreditNoteModelFromDomain(n *invoicing.CreditNote) *CreditNoteModel {
	m := &CreditNoteModel{}
	m.fromNote(&n.Note)
	return m
}

// ToDomain converts the persistence model to a domain CreditNote
func (m *CreditNoteModel) ToDomain() (*invoicing.CreditNote, error) {
	note, err := m.toNote(invoicing.DocumentTypeCreditNote)
	if err != nil {
		return nil, err
	}
	return &invoicing.CreditNote{Note: note}, nil
}

// DebitNoteModel is the persistence model for debit notes
type DebitNoteModel struct {
	NoteColumns
}

// TableName returns the table name for GORM
func (DebitNoteModel) TableName() string {
	return "debit_notes"
}

// DebitNoteModelFromDomain creates a new persistence model from a domain DebitNote
func DebitNoteModelFromDomain(n *invoicing.DebitNote) *DebitNoteModel {
	m := &DebitNoteModel{}
	m.fromNote(&n.Note)
	return m
}

// ToDomain converts the persistence model to a domain DebitNote
func (m *DebitNoteModel) ToDomain() (*invoicing.DebitNote, error) {
	note, err := m.toNote(invoicing.DocumentTypeDebitNote)
	if err != nil {
		return nil, err
	}
	return &invoicing.DebitNote{Note: note}, nil
}
