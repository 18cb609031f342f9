// Package company holds the issuing company, the tenant that owns documents,
// customers and the per-document-type number counters.
package company

import (
	"strings"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// Counters holds the next number to issue for each document type.
// Counters only move forward and only through the atomic store increment.
type Counters struct {
	NextInvoiceNumber    int64 `json:"nextInvoiceNumber"`
	NextQuotationNumber  int64 `json:"nextQuotationNumber"`
	NextCreditNoteNumber int64 `json:"nextCreditNoteNumber"`
	NextDebitNoteNumber  int64 `json:"nextDebitNoteNumber"`
}

// NewCounters returns counters that issue number 1 first
func NewCounters() Counters {
	return Counters{
		NextInvoiceNumber:    1,
		NextQuotationNumber:  1,
		NextCreditNoteNumber: 1,
		NextDebitNoteNumber:  1,
	}
}

// Company is the issuer of documents and the tenant of all invoicing data.
// Its ID doubles as the TenantID of everything it owns.
type Company struct {
	shared.BaseAggregateRoot
	Name            string
	Email           string
	Address         valueobject.Address
	TaxIDs          map[string]string
	DefaultCurrency valueobject.Currency
	Counters        Counters
}

// NewCompany creates a new company with fresh counters
func NewCompany(name string, defaultCurrency valueobject.Currency) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	if !defaultCurrency.IsValid() {
		return nil, shared.NewDomainError("UNSUPPORTED_CURRENCY", "Unsupported currency code "+string(defaultCurrency))
	}

	return &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		TaxIDs:            map[string]string{},
		DefaultCurrency:   defaultCurrency,
		Counters:          NewCounters(),
	}, nil
}

// TenantID returns the tenant key used by documents and customers
func (c *Company) TenantID() uuid.UUID {
	return c.ID
}
