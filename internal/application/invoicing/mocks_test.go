package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	return m.Called(ctx, c).Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Quotation, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindDraftsByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*invoicing.Quotation, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]*invoicing.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) Create(ctx context.Context, q *invoicing.Quotation) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuotationRepository) SaveWithLock(ctx context.Context, q *invoicing.Quotation) error {
	return m.Called(ctx, q).Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindDraftsByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*invoicing.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]*invoicing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoicing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoicing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.CreditNote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindDraftsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*invoicing.CreditNote, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).([]*invoicing.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) Create(ctx context.Context, note *invoicing.CreditNote) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockCreditNoteRepository) SaveWithLock(ctx context.Context, note *invoicing.CreditNote) error {
	return m.Called(ctx, note).Error(0)
}

type MockDebitNoteRepository struct {
	mock.Mock
}

func (m *MockDebitNoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.DebitNote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.DebitNote), args.Error(1)
}

func (m *MockDebitNoteRepository) FindDraftsByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*invoicing.DebitNote, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).([]*invoicing.DebitNote), args.Error(1)
}

func (m *MockDebitNoteRepository) Create(ctx context.Context, note *invoicing.DebitNote) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockDebitNoteRepository) SaveWithLock(ctx context.Context, note *invoicing.DebitNote) error {
	return m.Called(ctx, note).Error(0)
}

type MockDocumentTransactions struct {
	mock.Mock
}

func (m *MockDocumentTransactions) SaveCreditNoteApplication(ctx context.Context, inv *invoicing.Invoice, note *invoicing.CreditNote) error {
	return m.Called(ctx, inv, note).Error(0)
}

func (m *MockDocumentTransactions) SaveDebitNoteApplication(ctx context.Context, inv *invoicing.Invoice, note *invoicing.DebitNote) error {
	return m.Called(ctx, inv, note).Error(0)
}

func (m *MockDocumentTransactions) SaveQuotationConversion(ctx context.Context, q *invoicing.Quotation, inv *invoicing.Invoice) error {
	return m.Called(ctx, q, inv).Error(0)
}

type MockSnapshotWriter struct {
	mock.Mock
}

func (m *MockSnapshotWriter) ApplySnapshot(ctx context.Context, doc *invoicing.Document, entry *invoicing.SnapshotAuditLog) error {
	return m.Called(ctx, doc, entry).Error(0)
}

type MockSnapshotAuditRepository struct {
	mock.Mock
}

func (m *MockSnapshotAuditRepository) FindByDocument(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, documentID uuid.UUID, filter shared.Filter) ([]invoicing.SnapshotAuditLog, int64, error) {
	args := m.Called(ctx, tenantID, docType, documentID, filter)
	return args.Get(0).([]invoicing.SnapshotAuditLog), args.Get(1).(int64), args.Error(2)
}

type MockCounterStore struct {
	mock.Mock
}

func (m *MockCounterStore) Increment(ctx context.Context, companyID uuid.UUID, docType invoicing.DocumentType) (int64, error) {
	args := m.Called(ctx, companyID, docType)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Mock infrastructure
// =============================================================================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

type MockCustomerSyncer struct {
	mock.Mock
}

func (m *MockCustomerSyncer) SyncCustomer(ctx context.Context, tenantID, customerID uuid.UUID, snapshot partner.CustomerSnapshot, updatedBy string) (int, error) {
	args := m.Called(ctx, tenantID, customerID, snapshot, updatedBy)
	return args.Int(0), args.Error(1)
}
