package models

import (
	"maps"

	"github.com/invoicing/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	TenantAggregateModel
	Name    string                        `gorm:"type:varchar(200);not null"`
	Email   string                        `gorm:"type:varchar(200);index"`
	Phone   string                        `gorm:"type:varchar(50)"`
	Address AddressColumns                `gorm:"embedded;embeddedPrefix:address_"`
	TaxIDs  JSONColumn[map[string]string] `gorm:"column:tax_ids;type:jsonb"`
	Status  partner.CustomerStatus        `gorm:"type:varchar(20);not null;default:'active'"`
	Notes   string                        `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	taxIDs := maps.Clone(m.TaxIDs.V)
	if taxIDs == nil {
		taxIDs = map[string]string{}
	}
	return &partner.Customer{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Address:             m.Address.ToDomain(),
		TaxIDs:              taxIDs,
		Status:              m.Status,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = AddressColumnsFromDomain(c.Address)
	m.TaxIDs = NewJSONColumn(c.TaxIDs)
	m.Status = c.Status
	m.Notes = c.Notes
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
