package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==================== Service mocks ====================

type MockCompanyService struct {
	mock.Mock
}

func (m *MockCompanyService) CreateCompany(ctx context.Context, req partnerapp.CreateCompanyRequest) (*partnerapp.CompanyResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CompanyResponse), args.Error(1)
}

func (m *MockCompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*partnerapp.CompanyResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CompanyResponse), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) List(ctx context.Context, tenantID uuid.UUID, filter partnerapp.CustomerListFilter) (shared.Paginated[partnerapp.CustomerResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[partnerapp.CustomerResponse]), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req partnerapp.UpdateCustomerRequest) (*partnerapp.UpdateCustomerResponse, error) {
	args := m.Called(ctx, tenantID, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.UpdateCustomerResponse), args.Error(1)
}

func (m *MockCustomerService) Archive(ctx context.Context, tenantID, customerID uuid.UUID) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CustomerResponse), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) CreateQuotation(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateQuotationRequest) (*invoicingapp.QuotationResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.QuotationResponse), args.Error(1)
}

func (m *MockDocumentService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateInvoiceRequest) (*invoicingapp.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.InvoiceResponse), args.Error(1)
}

func (m *MockDocumentService) CreateCreditNote(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateNoteRequest) (*invoicingapp.NoteResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.NoteResponse), args.Error(1)
}

func (m *MockDocumentService) CreateDebitNote(ctx context.Context, tenantID uuid.UUID, req invoicingapp.CreateNoteRequest) (*invoicingapp.NoteResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.NoteResponse), args.Error(1)
}

func (m *MockDocumentService) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.InvoiceResponse), args.Error(1)
}

func (m *MockDocumentService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[invoicingapp.InvoiceResponse], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[invoicingapp.InvoiceResponse]), args.Error(1)
}

func (m *MockDocumentService) GetQuotation(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.QuotationResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.QuotationResponse), args.Error(1)
}

func (m *MockDocumentService) GetNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*invoicingapp.NoteResponse, error) {
	args := m.Called(ctx, tenantID, docType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.NoteResponse), args.Error(1)
}

func (m *MockDocumentService) UpdateItems(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, req invoicingapp.UpdateItemsRequest) (*invoicingapp.DocumentResponse, error) {
	args := m.Called(ctx, tenantID, docType, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) TransitionQuotation(ctx context.Context, tenantID, id uuid.UUID, req invoicingapp.TransitionQuotationRequest) (*invoicingapp.QuotationResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.QuotationResponse), args.Error(1)
}

func (m *MockDocumentService) SendInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.InvoiceResponse), args.Error(1)
}

func (m *MockDocumentService) CancelInvoice(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.InvoiceResponse), args.Error(1)
}

func (m *MockDocumentService) IssueNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*invoicingapp.NoteResponse, error) {
	args := m.Called(ctx, tenantID, docType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.NoteResponse), args.Error(1)
}

func (m *MockDocumentService) CancelNote(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID) (*invoicingapp.NoteResponse, error) {
	args := m.Called(ctx, tenantID, docType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.NoteResponse), args.Error(1)
}

func (m *MockDocumentService) ConvertQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) (*invoicingapp.ConversionResponse, error) {
	args := m.Called(ctx, tenantID, quotationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.ConversionResponse), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req invoicingapp.RecordPaymentRequest) (*invoicingapp.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, invoiceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.InvoiceResponse), args.Error(1)
}

func (m *MockPaymentService) VoidPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, index int, req invoicingapp.VoidPaymentRequest) (*invoicingapp.InvoiceResponse, error) {
	args := m.Called(ctx, tenantID, invoiceID, index, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.InvoiceResponse), args.Error(1)
}

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) ApplyCreditNote(ctx context.Context, tenantID, noteID uuid.UUID) (*invoicingapp.NoteApplicationResponse, error) {
	args := m.Called(ctx, tenantID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.NoteApplicationResponse), args.Error(1)
}

func (m *MockNoteService) ApplyDebitNote(ctx context.Context, tenantID, noteID uuid.UUID) (*invoicingapp.NoteApplicationResponse, error) {
	args := m.Called(ctx, tenantID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.NoteApplicationResponse), args.Error(1)
}

type MockSnapshotService struct {
	mock.Mock
}

func (m *MockSnapshotService) RefreshSnapshot(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, updatedBy string) (*invoicingapp.RefreshSnapshotResponse, error) {
	args := m.Called(ctx, tenantID, docType, id, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicingapp.RefreshSnapshotResponse), args.Error(1)
}

func (m *MockSnapshotService) ListSnapshotAudits(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType, id uuid.UUID, filter shared.Filter) (shared.Paginated[invoicingapp.SnapshotAuditResponse], error) {
	args := m.Called(ctx, tenantID, docType, id, filter)
	return args.Get(0).(shared.Paginated[invoicingapp.SnapshotAuditResponse]), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ==================== Request helpers ====================

// newTenantRouter returns an engine with the tenant middleware installed
func newTenantRouter() *gin.Engine {
	middleware.SetupValidator()
	router := gin.New()
	router.Use(middleware.TenantMiddleware())
	return router
}

type testRequest struct {
	method   string
	path     string
	body     any
	tenantID uuid.UUID
	headers  map[string]string
}

func perform(t *testing.T, router *gin.Engine, r testRequest) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader = http.NoBody
	switch b := r.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	req.Header.Set("Content-Type", "application/json")
	if r.tenantID != uuid.Nil {
		req.Header.Set(middleware.TenantHeaderKey, r.tenantID.String())
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success response
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}
