package invoicing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, tenantID uuid.UUID) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(tenantID, partner.CustomerIdentity{
		Name:    "Globex Corporation",
		Email:   "billing@globex.example",
		Address: valueobject.NewAddress("1 Main St", "Springfield", "IL", "62701", "US"),
		TaxIDs:  map[string]string{"ein": "12-3456789"},
	}, "US")
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func itemRequest(name, qty, price, rate string) ItemRequest {
	return ItemRequest{
		Name:           name,
		Quantity:       decimal.RequireFromString(qty),
		UnitPrice:      decimal.RequireFromString(price),
		TaxRatePercent: decimal.RequireFromString(rate),
	}
}

func header(number string, customer *partner.Customer) invoicing.DocumentHeader {
	return invoicing.DocumentHeader{
		Number:     number,
		CustomerID: customer.ID,
		Customer:   customer.Snapshot(),
		Currency:   valueobject.USD,
	}
}

// newTestInvoice returns a draft invoice whose total is exactly amount
func newTestInvoice(t *testing.T, customer *partner.Customer, amount string) *invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(customer.TenantID, header("INV-0001", customer), ToItemInputs([]ItemRequest{
		itemRequest("Consulting", "1", amount, "0"),
	}))
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func newTestCreditNote(t *testing.T, inv *invoicing.Invoice, customer *partner.Customer, amount string) *invoicing.CreditNote {
	t.Helper()
	note, err := invoicing.NewCreditNote(inv, header("CN-0001", customer), ToItemInputs([]ItemRequest{
		itemRequest("Refund", "1", amount, "0"),
	}), "returned goods")
	require.NoError(t, err)
	note.ClearDomainEvents()
	return note
}

func newTestDebitNote(t *testing.T, inv *invoicing.Invoice, customer *partner.Customer, amount string) *invoicing.DebitNote {
	t.Helper()
	note, err := invoicing.NewDebitNote(inv, header("DN-0001", customer), ToItemInputs([]ItemRequest{
		itemRequest("Late fee", "1", amount, "0"),
	}), "late payment")
	require.NoError(t, err)
	note.ClearDomainEvents()
	return note
}

func newTestQuotation(t *testing.T, customer *partner.Customer) *invoicing.Quotation {
	t.Helper()
	q, err := invoicing.NewQuotation(customer.TenantID, header("QT-0001", customer), ToItemInputs([]ItemRequest{
		itemRequest("Design", "2", "150.00", "20"),
	}), nil)
	require.NoError(t, err)
	q.ClearDomainEvents()
	return q
}

func money(amount string) valueobject.Money {
	return valueobject.MustFromString(amount, valueobject.USD)
}
