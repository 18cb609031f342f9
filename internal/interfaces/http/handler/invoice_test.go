package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoicingapp "github.com/invoicing/backend/internal/application/invoicing"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/invoicing/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupInvoiceRouter(docs *MockDocumentService, payments *MockPaymentService) *gin.Engine {
	h := NewInvoiceHandler(docs, payments)
	router := newTenantRouter()
	router.POST("/invoices", h.Create)
	router.GET("/invoices", h.List)
	router.GET("/invoices/:id", h.Get)
	router.POST("/invoices/:id/send", h.Send)
	router.POST("/invoices/:id/cancel", h.Cancel)
	router.POST("/invoices/:id/payments", h.RecordPayment)
	router.DELETE("/invoices/:id/payments/:index", h.VoidPayment)
	return router
}

func invoiceResponse(id uuid.UUID, status, paymentStatus string) *invoicingapp.InvoiceResponse {
	usd := valueobject.Currency("USD")
	return &invoicingapp.InvoiceResponse{
		DocumentResponse: invoicingapp.DocumentResponse{
			ID:       id,
			Type:     "invoice",
			Number:   "INV-0001",
			Status:   status,
			Currency: "USD",
		},
		InvoiceTotal:  valueobject.MustNewMoney(10000, usd),
		PaymentStatus: paymentStatus,
		AmountPaid:    valueobject.MustNewMoney(4000, usd),
		AmountDue:     valueobject.MustNewMoney(6000, usd),
		Overpayment:   valueobject.Zero(usd),
	}
}

type invoiceView struct {
	ID            uuid.UUID `json:"id"`
	Number        string    `json:"number"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	AmountDue     struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"amount_due"`
}

func TestInvoiceHandler_Create(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()

	t.Run("success", func(t *testing.T) {
		docs := new(MockDocumentService)
		id := uuid.New()
		docs.On("CreateInvoice", mock.Anything, tenantID, mock.MatchedBy(func(req invoicingapp.CreateInvoiceRequest) bool {
			return req.CustomerID == customerID &&
				len(req.Items) == 1 &&
				req.Items[0].UnitPrice.Equal(decimal.RequireFromString("19.99")) &&
				req.Items[0].TaxRatePercent.Equal(decimal.NewFromInt(20))
		})).Return(invoiceResponse(id, "draft", "unpaid"), nil)

		w := perform(t, setupInvoiceRouter(docs, new(MockPaymentService)), testRequest{
			method:   http.MethodPost,
			path:     "/invoices",
			tenantID: tenantID,
			body: `{"customer_id":"` + customerID.String() + `","currency":"USD","items":[
				{"name":"Widget","quantity":"2","unit_price":"19.99","tax_rate_percent":"20"}]}`,
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got invoiceView
		decodeData(t, w, &got)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "draft", got.Status)
		docs.AssertExpectations(t)
	})

	t.Run("item without name", func(t *testing.T) {
		docs := new(MockDocumentService)

		w := perform(t, setupInvoiceRouter(docs, new(MockPaymentService)), testRequest{
			method:   http.MethodPost,
			path:     "/invoices",
			tenantID: tenantID,
			body:     `{"customer_id":"` + customerID.String() + `","items":[{"quantity":"1","unit_price":"5"}]}`,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.NotEmpty(t, resp.Error.Details)
		assert.Equal(t, "name", resp.Error.Details[0].Field)
	})

	t.Run("unsupported currency", func(t *testing.T) {
		docs := new(MockDocumentService)
		docs.On("CreateInvoice", mock.Anything, tenantID, mock.Anything).Return(nil, valueobject.ErrUnsupportedCurrency)

		w := perform(t, setupInvoiceRouter(docs, new(MockPaymentService)), testRequest{
			method:   http.MethodPost,
			path:     "/invoices",
			tenantID: tenantID,
			body:     `{"customer_id":"` + customerID.String() + `","currency":"ZZZ"}`,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.CodeUnsupportedCurrency, decodeResponse(t, w).Error.Code)
	})
}

func TestInvoiceHandler_Get(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()
	docs := new(MockDocumentService)
	docs.On("GetInvoice", mock.Anything, tenantID, id).Return(invoiceResponse(id, "sent", "partial"), nil)

	w := perform(t, setupInvoiceRouter(docs, new(MockPaymentService)), testRequest{
		method:   http.MethodGet,
		path:     "/invoices/" + id.String(),
		tenantID: tenantID,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var got invoiceView
	decodeData(t, w, &got)
	assert.Equal(t, "partial", got.PaymentStatus)
	assert.Equal(t, "60.00", got.AmountDue.Amount)
	assert.Equal(t, "USD", got.AmountDue.Currency)
}

func TestInvoiceHandler_List_PassesFilters(t *testing.T) {
	tenantID := uuid.New()
	docs := new(MockDocumentService)
	docs.On("ListInvoices", mock.Anything, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.Filters["payment_status"] == "overdue" && f.Filters["status"] == nil
	})).Return(shared.NewPaginated([]invoicingapp.InvoiceResponse{}, 0, 1, 20), nil)

	w := perform(t, setupInvoiceRouter(docs, new(MockPaymentService)), testRequest{
		method:   http.MethodGet,
		path:     "/invoices?payment_status=overdue",
		tenantID: tenantID,
	})

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	docs.AssertExpectations(t)
}

func TestInvoiceHandler_Lifecycle(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()

	t.Run("send", func(t *testing.T) {
		docs := new(MockDocumentService)
		docs.On("SendInvoice", mock.Anything, tenantID, id).Return(invoiceResponse(id, "sent", "unpaid"), nil)

		w := perform(t, setupInvoiceRouter(docs, new(MockPaymentService)), testRequest{
			method:   http.MethodPost,
			path:     "/invoices/" + id.String() + "/send",
			tenantID: tenantID,
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("send empty draft", func(t *testing.T) {
		docs := new(MockDocumentService)
		docs.On("SendInvoice", mock.Anything, tenantID, id).Return(nil, invoicing.ErrEmptyDocument)

		w := perform(t, setupInvoiceRouter(docs, new(MockPaymentService)), testRequest{
			method:   http.MethodPost,
			path:     "/invoices/" + id.String() + "/send",
			tenantID: tenantID,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.CodeEmptyDocument, decodeResponse(t, w).Error.Code)
	})

	t.Run("cancel paid invoice", func(t *testing.T) {
		docs := new(MockDocumentService)
		docs.On("CancelInvoice", mock.Anything, tenantID, id).Return(nil, invoicing.ErrInvalidTransition)

		w := perform(t, setupInvoiceRouter(docs, new(MockPaymentService)), testRequest{
			method:   http.MethodPost,
			path:     "/invoices/" + id.String() + "/cancel",
			tenantID: tenantID,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, decodeResponse(t, w).Error.Code)
	})
}

func TestInvoiceHandler_RecordPayment(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()

	t.Run("idempotency key from header", func(t *testing.T) {
		payments := new(MockPaymentService)
		payments.On("RecordPayment", mock.Anything, tenantID, id, mock.MatchedBy(func(req invoicingapp.RecordPaymentRequest) bool {
			return req.Amount.Equal(decimal.RequireFromString("40.00")) &&
				req.Method == "bank_transfer" &&
				req.IdempotencyKey == "pay-123"
		})).Return(invoiceResponse(id, "sent", "partial"), nil)

		w := perform(t, setupInvoiceRouter(new(MockDocumentService), payments), testRequest{
			method:   http.MethodPost,
			path:     "/invoices/" + id.String() + "/payments",
			tenantID: tenantID,
			headers:  map[string]string{IdempotencyKeyHeader: "pay-123"},
			body:     `{"amount":"40.00","method":"bank_transfer","reference":"TX-9"}`,
		})

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		payments.AssertExpectations(t)
	})

	t.Run("method required", func(t *testing.T) {
		payments := new(MockPaymentService)

		w := perform(t, setupInvoiceRouter(new(MockDocumentService), payments), testRequest{
			method:   http.MethodPost,
			path:     "/invoices/" + id.String() + "/payments",
			tenantID: tenantID,
			body:     `{"amount":"40.00"}`,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
		payments.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"non-positive amount", invoicing.ErrInvalidPaymentAmount, http.StatusBadRequest, "INVALID_PAYMENT_AMOUNT"},
		{"draft invoice", invoicing.ErrInvalidTransition, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"concurrent payment", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"missing invoice", invoicing.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{"same key still processing", invoicing.ErrPaymentInProgress, http.StatusConflict, dto.CodePaymentInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := new(MockPaymentService)
			payments.On("RecordPayment", mock.Anything, tenantID, id, mock.Anything).Return(nil, tt.err)

			w := perform(t, setupInvoiceRouter(new(MockDocumentService), payments), testRequest{
				method:   http.MethodPost,
				path:     "/invoices/" + id.String() + "/payments",
				tenantID: tenantID,
				body:     `{"amount":"-1","method":"cash"}`,
			})

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeResponse(t, w).Error.Code)
		})
	}
}

func TestInvoiceHandler_VoidPayment(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()

	t.Run("without body", func(t *testing.T) {
		payments := new(MockPaymentService)
		payments.On("VoidPayment", mock.Anything, tenantID, id, 1, invoicingapp.VoidPaymentRequest{}).
			Return(invoiceResponse(id, "sent", "unpaid"), nil)

		w := perform(t, setupInvoiceRouter(new(MockDocumentService), payments), testRequest{
			method:   http.MethodDelete,
			path:     "/invoices/" + id.String() + "/payments/1",
			tenantID: tenantID,
		})

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		payments.AssertExpectations(t)
	})

	t.Run("with reason", func(t *testing.T) {
		payments := new(MockPaymentService)
		payments.On("VoidPayment", mock.Anything, tenantID, id, 0, invoicingapp.VoidPaymentRequest{Reason: "bounced"}).
			Return(invoiceResponse(id, "sent", "unpaid"), nil)

		w := perform(t, setupInvoiceRouter(new(MockDocumentService), payments), testRequest{
			method:   http.MethodDelete,
			path:     "/invoices/" + id.String() + "/payments/0",
			tenantID: tenantID,
			body:     `{"reason":"bounced"}`,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		payments.AssertExpectations(t)
	})

	t.Run("index out of range", func(t *testing.T) {
		payments := new(MockPaymentService)
		payments.On("VoidPayment", mock.Anything, tenantID, id, 7, mock.Anything).Return(nil, invoicing.ErrPaymentNotFound)

		w := perform(t, setupInvoiceRouter(new(MockDocumentService), payments), testRequest{
			method:   http.MethodDelete,
			path:     "/invoices/" + id.String() + "/payments/7",
			tenantID: tenantID,
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "PAYMENT_NOT_FOUND", decodeResponse(t, w).Error.Code)
	})

	t.Run("non-numeric index", func(t *testing.T) {
		payments := new(MockPaymentService)

		w := perform(t, setupInvoiceRouter(new(MockDocumentService), payments), testRequest{
			method:   http.MethodDelete,
			path:     "/invoices/" + id.String() + "/payments/first",
			tenantID: tenantID,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		payments.AssertNotCalled(t, "VoidPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
