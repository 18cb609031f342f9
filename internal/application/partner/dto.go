package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
)

// ==================== Company DTOs ====================

// AddressRequest is a postal address in requests
type AddressRequest struct {
	Street     string `json:"street" binding:"max=200"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"omitempty,len=2"`
}

// ToAddress converts the request to a value object
func (a AddressRequest) ToAddress() valueobject.Address {
	return valueobject.NewAddress(a.Street, a.City, a.State, a.PostalCode, a.Country)
}

// AddressResponse is a postal address in responses
type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func toAddressResponse(a valueobject.Address) AddressResponse {
	return AddressResponse{
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// CreateCompanyRequest represents a request to register an issuing company
type CreateCompanyRequest struct {
	Name            string            `json:"name" binding:"required,min=1,max=200"`
	Email           string            `json:"email" binding:"omitempty,email,max=200"`
	Address         AddressRequest    `json:"address"`
	TaxIDs          map[string]string `json:"tax_ids"`
	DefaultCurrency string            `json:"default_currency" binding:"required,len=3"`
}

// CountersResponse shows the next number of each document type
type CountersResponse struct {
	NextInvoiceNumber    int64 `json:"next_invoice_number"`
	NextQuotationNumber  int64 `json:"next_quotation_number"`
	NextCreditNoteNumber int64 `json:"next_credit_note_number"`
	NextDebitNoteNumber  int64 `json:"next_debit_note_number"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Email           string            `json:"email,omitempty"`
	Address         AddressResponse   `json:"address"`
	TaxIDs          map[string]string `json:"tax_ids"`
	DefaultCurrency string            `json:"default_currency"`
	Counters        CountersResponse  `json:"counters"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ToCompanyResponse converts a domain Company
func ToCompanyResponse(c *company.Company) CompanyResponse {
	return CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Address:         toAddressResponse(c.Address),
		TaxIDs:          c.TaxIDs,
		DefaultCurrency: c.DefaultCurrency.String(),
		Counters: CountersResponse{
			NextInvoiceNumber:    c.Counters.NextInvoiceNumber,
			NextQuotationNumber:  c.Counters.NextQuotationNumber,
			NextCreditNoteNumber: c.Counters.NextCreditNoteNumber,
			NextDebitNoteNumber:  c.Counters.NextDebitNoteNumber,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ==================== Customer DTOs ====================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name    string            `json:"name" binding:"required,min=1,max=200"`
	Email   string            `json:"email" binding:"omitempty,email,max=200"`
	Phone   string            `json:"phone" binding:"max=50"`
	Address AddressRequest    `json:"address"`
	TaxIDs  map[string]string `json:"tax_ids"`
	Notes   string            `json:"notes" binding:"max=2000"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Nil fields keep their current value.
type UpdateCustomerRequest struct {
	Name    *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Email   *string            `json:"email" binding:"omitempty,max=200"`
	Phone   *string            `json:"phone" binding:"omitempty,max=50"`
	Address *AddressRequest    `json:"address"`
	TaxIDs  *map[string]string `json:"tax_ids"`
	Notes   *string            `json:"notes" binding:"omitempty,max=2000"`

	// UpdatedBy is taken from the X-User-ID header
	UpdatedBy string `json:"-"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID         `json:"id"`
	TenantID  uuid.UUID         `json:"tenant_id"`
	Name      string            `json:"name"`
	Email     string            `json:"email,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Address   AddressResponse   `json:"address"`
	TaxIDs    map[string]string `json:"tax_ids"`
	Status    string            `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// UpdateCustomerResponse is returned by a customer update. DocumentsUpdated
// counts the draft documents whose snapshot was rewritten.
type UpdateCustomerResponse struct {
	Customer         CustomerResponse `json:"customer"`
	DocumentsUpdated int              `json:"documentsUpdated"`
}

// CustomerListFilter holds the query parameters for listing customers
type CustomerListFilter struct {
	Search   string `form:"search" binding:"max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=active archived"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse converts a domain Customer
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   toAddressResponse(c.Address),
		TaxIDs:    c.TaxIDs,
		Status:    string(c.Status),
		Notes:     c.Notes,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of domain customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}
