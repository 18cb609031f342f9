package models

import (
	"maps"

	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// CompanyModel is the persistence model for the Company aggregate.
// The counter columns are only ever moved by an atomic increment.
type CompanyModel struct {
	AggregateModel
	Name                 string                        `gorm:"type:varchar(200);not null"`
	Email                string                        `gorm:"type:varchar(200)"`
	Address              AddressColumns                `gorm:"embedded;embeddedPrefix:address_"`
	TaxIDs               JSONColumn[map[string]string] `gorm:"column:tax_ids;type:jsonb"`
	DefaultCurrency      string                        `gorm:"type:varchar(3);not null"`
	NextInvoiceNumber    int64                         `gorm:"not null;default:1"`
	NextQuotationNumber  int64                         `gorm:"not null;default:1"`
	NextCreditNoteNumber int64                         `gorm:"not null;default:1"`
	NextDebitNoteNumber  int64                         `gorm:"not null;default:1"`
	DeletedAt            gorm.DeletedAt                `gorm:"index"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company
func (m *CompanyModel) ToDomain() *company.Company {
	taxIDs := maps.Clone(m.TaxIDs.V)
	if taxIDs == nil {
		taxIDs = map[string]string{}
	}
	return &company.Company{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Address:           m.Address.ToDomain(),
		TaxIDs:            taxIDs,
		DefaultCurrency:   valueobject.Currency(m.DefaultCurrency),
		Counters: company.Counters{
			NextInvoiceNumber:    m.NextInvoiceNumber,
			NextQuotationNumber:  m.NextQuotationNumber,
			NextCreditNoteNumber: m.NextCreditNoteNumber,
			NextDebitNoteNumber:  m.NextDebitNoteNumber,
		},
	}
}

// CompanyModelFromDomain creates a new persistence model from a domain Company
func CompanyModelFromDomain(c *company.Company) *CompanyModel {
	m := &CompanyModel{
		Name:                 c.Name,
		Email:                c.Email,
		Address:              AddressColumnsFromDomain(c.Address),
		TaxIDs:               NewJSONColumn(c.TaxIDs),
		DefaultCurrency:      c.DefaultCurrency.String(),
		NextInvoiceNumber:    c.Counters.NextInvoiceNumber,
		NextQuotationNumber:  c.Counters.NextQuotationNumber,
		NextCreditNoteNumber: c.Counters.NextCreditNoteNumber,
		NextDebitNoteNumber:  c.Counters.NextDebitNoteNumber,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// CounterColumn returns the counters column that numbers docType
func CounterColumn(docType invoicing.DocumentType) (string, bool) {
	switch docType {
	case invoicing.DocumentTypeInvoice:
		return "next_invoice_number", true
	case invoicing.DocumentTypeQuotation:
		return "next_quotation_number", true
	case invoicing.DocumentTypeCreditNote:
		return "next_credit_note_number", true
	case invoicing.DocumentTypeDebitNote:
		return "next_debit_note_number", true
	}
	return "", false
}
