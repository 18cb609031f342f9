//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/invoicing/backend/internal/infrastructure/cache"
	"github.com/invoicing/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *TestDB
	company  *company.Company
	customer *partner.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testDB := NewTestDB(t)
	ctx := context.Background()

	c, err := company.NewCompany("Acme Billing Ltd", valueobject.EUR)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCompanyRepository(testDB.DB).Create(ctx, c))

	customer, err := partner.NewCustomer(c.TenantID(), partner.CustomerIdentity{
		Name:    "Globex GmbH",
		Email:   "billing@globex.example",
		Address: valueobject.NewAddress("Unter den Linden 1", "Berlin", "", "10117", "DE"),
		TaxIDs:  map[string]string{"vat": "DE123456789"},
	}, "DE")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerRepository(testDB.DB).Create(ctx, customer))

	return &fixture{db: testDB, company: c, customer: customer}
}

func (f *fixture) invoice(t *testing.T, number, amount string) *invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(f.company.TenantID(), invoicing.DocumentHeader{
		Number:     number,
		CustomerID: f.customer.ID,
		Customer:   f.customer.Snapshot(),
		Currency:   valueobject.EUR,
	}, []invoicing.ItemInput{{
		Name:           "Consulting",
		Quantity:       decimal.NewFromInt(1),
		UnitPrice:      decimal.RequireFromString(amount),
		TaxRatePercent: decimal.Zero,
	}})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormInvoiceRepository(f.db.DB).Create(context.Background(), inv))
	return inv
}

func TestNumberAllocator_ConcurrentAllocationsAreUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	f := newFixture(t)
	allocator := invoicingapp.NewNumberAllocator(persistence.NewGormCounterStore(f.db.DB), 5, nil, nil)

	const workers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]int)
		errs    []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := allocator.GetNextNumber(context.Background(), f.company.ID, invoicing.DocumentTypeInvoice)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[number]++
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, numbers, workers)
	for i := 1; i <= workers; i++ {
		assert.Equal(t, 1, numbers[fmt.Sprintf("INV-%05d", i)])
	}

	next, err := allocator.GetNextNumber(context.Background(), f.company.ID, invoicing.DocumentTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%05d", workers+1), next)
}

func TestPaymentService_ConcurrentPaymentsNeverLoseUpdates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	f := newFixture(t)
	invoices := persistence.NewGormInvoiceRepository(f.db.DB)
	service := invoicingapp.NewPaymentService(invoicingapp.PaymentServiceConfig{
		Invoices:    invoices,
		Idempotency: cache.NewInMemoryIdempotencyStore(),
	})
	inv := f.invoice(t, "INV-00001", "100.00")

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
		other     []error
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.RecordPayment(context.Background(), inv.TenantID, inv.ID, invoicingapp.RecordPaymentRequest{
				Amount:         decimal.RequireFromString("10.00"),
				Method:         string(invoicing.PaymentMethodBankTransfer),
				Reference:      fmt.Sprintf("WIRE-%d", i),
				IdempotencyKey: fmt.Sprintf("key-%d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, shared.ErrConcurrencyConflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, workers, succeeded+conflicts)
	assert.GreaterOrEqual(t, succeeded, 1)

	stored, err := invoices.FindByIDForTenant(context.Background(), inv.TenantID, inv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payments, succeeded)
	assert.Equal(t, int64(succeeded*1000), stored.AmountPaid.MinorUnits())
	assert.Equal(t, int64(10000-succeeded*1000), stored.AmountDue.MinorUnits())
	assert.Equal(t, 1+succeeded, stored.Version)
}

func TestInvoiceRepository_NumbersAreUniquePerCompany(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	f := newFixture(t)
	f.invoice(t, "INV-00001", "10.00")

	dup, err := invoicing.NewInvoice(f.company.TenantID(), invoicing.DocumentHeader{
		Number:     "INV-00001",
		CustomerID: f.customer.ID,
		Customer:   f.customer.Snapshot(),
		Currency:   valueobject.EUR,
	}, nil)
	require.NoError(t, err)

	err = persistence.NewGormInvoiceRepository(f.db.DB).Create(context.Background(), dup)
	assert.Error(t, err)
}

func TestSnapshotWriter_ConcurrentSyncWritesOneAudit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	f := newFixture(t)
	invoices := persistence.NewGormInvoiceRepository(f.db.DB)
	writer := persistence.NewGormSnapshotWriter(f.db.DB)
	audits := persistence.NewGormSnapshotAuditRepository(f.db.DB)
	inv := f.invoice(t, "INV-00001", "10.00")

	updated := f.customer.Snapshot()
	updated.Name = "Globex International GmbH"

	const workers = 5
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := invoices.FindByIDForTenant(context.Background(), inv.TenantID, inv.ID)
			if err != nil {
				return
			}
			entry, err := invoicing.SyncSnapshot(&doc.Document, updated, invoicing.ReasonCustomerUpdate, "sync", nil)
			if err != nil || entry == nil {
				return
			}
			if writer.ApplySnapshot(context.Background(), &doc.Document, entry) == nil {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	_, total, err := audits.FindByDocument(context.Background(), inv.TenantID, invoicing.DocumentTypeInvoice, inv.ID, shared.Filter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
