package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCompany(t *testing.T, db *gorm.DB) *company.Company {
	t.Helper()
	c, err := company.NewCompany("Acme Billing Ltd", valueobject.USD)
	require.NoError(t, err)
	require.NoError(t, NewGormCompanyRepository(db).Create(context.Background(), c))
	return c
}

func newCustomer(t *testing.T, tenantID uuid.UUID, name, email string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(tenantID, partner.CustomerIdentity{
		Name:    name,
		Email:   email,
		Address: valueobject.NewAddress("Unter den Linden 1", "Berlin", "", "10117", "de"),
		TaxIDs:  map[string]string{"vat": "DE123456789"},
	}, "US")
	require.NoError(t, err)
	return c
}

func seedCustomer(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name, email string) *partner.Customer {
	t.Helper()
	c := newCustomer(t, tenantID, name, email)
	require.NoError(t, NewGormCustomerRepository(db).Create(context.Background(), c))
	return c
}

func header(number string, customer *partner.Customer) invoicing.DocumentHeader {
	return invoicing.DocumentHeader{
		Number:     number,
		CustomerID: customer.ID,
		Customer:   customer.Snapshot(),
		Currency:   valueobject.USD,
	}
}

func items(amount string) []invoicing.ItemInput {
	return []invoicing.ItemInput{{
		Name:           "Consulting",
		Quantity:       decimal.NewFromInt(1),
		UnitPrice:      decimal.RequireFromString(amount),
		TaxRatePercent: decimal.Zero,
	}}
}

func seedInvoice(t *testing.T, db *gorm.DB, customer *partner.Customer, number, amount string) *invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(customer.TenantID, header(number, customer), items(amount))
	require.NoError(t, err)
	require.NoError(t, NewGormInvoiceRepository(db).Create(context.Background(), inv))
	return inv
}

func usd(amount string) valueobject.Money {
	return valueobject.MustFromString(amount, valueobject.USD)
}
