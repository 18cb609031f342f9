package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCreditNote(t *testing.T, inv *Invoice, amount string) *CreditNote {
	cn, err := NewCreditNote(inv, testHeader("CN-0001"), []ItemInput{item("Refund", "1", amount, "0")}, "damaged goods")
	require.NoError(t, err)
	cn.ClearDomainEvents()
	return cn
}

func createDebitNote(t *testing.T, inv *Invoice, amount string) *DebitNote {
	dn, err := NewDebitNote(inv, testHeader("DN-0001"), []ItemInput{item("Late fee", "1", amount, "0")}, "late payment")
	require.NoError(t, err)
	dn.ClearDomainEvents()
	return dn
}

func TestNewCreditNote(t *testing.T) {
	inv := createTestInvoice(t, "100")
	header := testHeader("CN-0001")
	header.Currency = valueobject.EUR

	cn, err := NewCreditNote(inv, header, []ItemInput{item("Refund", "1", "20", "0")}, " damaged ")
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeCreditNote, cn.Type)
	assert.Equal(t, DocumentStatusDraft, cn.Status)
	assert.Equal(t, inv.ID, cn.InvoiceID)
	assert.Equal(t, "INV-0001", cn.InvoiceNumber)
	assert.Equal(t, inv.CustomerID, cn.CustomerID)
	assert.Equal(t, inv.TenantID, cn.TenantID)
	assert.Equal(t, valueobject.USD, cn.Currency, "notes bill in the invoice currency")
	assert.Equal(t, "damaged", cn.Reason)
	assert.Nil(t, cn.AppliedAt)

	events := cn.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, AggregateTypeCreditNote, events[0].AggregateType())
}

func TestNewNote_CancelledInvoice(t *testing.T) {
	inv := createTestInvoice(t, "100")
	require.NoError(t, inv.Cancel())

	_, err := NewCreditNote(inv, testHeader("CN-0001"), nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = NewDebitNote(inv, testHeader("DN-0001"), nil, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNote_Lifecycle(t *testing.T) {
	inv := createTestInvoice(t, "100")

	t.Run("issue", func(t *testing.T) {
		cn := createCreditNote(t, inv, "10")
		require.NoError(t, cn.Issue())
		assert.Equal(t, DocumentStatusIssued, cn.Status)
		assert.ErrorIs(t, cn.Issue(), ErrInvalidTransition)
	})

	t.Run("issue requires items", func(t *testing.T) {
		cn, err := NewCreditNote(inv, testHeader("CN-0002"), nil, "")
		require.NoError(t, err)
		assert.ErrorIs(t, cn.Issue(), ErrEmptyDocument)
	})

	t.Run("cancel", func(t *testing.T) {
		dn := createDebitNote(t, inv, "10")
		require.NoError(t, dn.Cancel())
		assert.Equal(t, DocumentStatusCancelled, dn.Status)
		assert.ErrorIs(t, dn.Cancel(), ErrInvalidTransition)
	})
}

func TestApplyCreditNote(t *testing.T) {
	inv := createTestInvoice(t, "1000")
	require.NoError(t, inv.RecordPayment(payment(t, "400"), false))
	inv.ClearDomainEvents()
	cn := createCreditNote(t, inv, "100")
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ApplyCreditNote(inv, cn, at))

	require.Len(t, inv.Payments, 2)
	posted := inv.Payments[1]
	assert.Equal(t, PaymentMethodCreditNote, posted.Method)
	assert.Equal(t, "CN-0001", posted.Reference)
	assert.Equal(t, "100.00", posted.Amount.StringFixed())
	assert.Equal(t, PaymentStatusPartial, inv.PaymentStatus)
	assert.Equal(t, "500.00", inv.AmountPaid.StringFixed())
	assert.Equal(t, "500.00", inv.AmountDue.StringFixed())

	assert.True(t, cn.IsApplied())
	require.NotNil(t, cn.AppliedAt)
	assert.Equal(t, at, *cn.AppliedAt)

	var types []string
	for _, e := range inv.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{EventTypePaymentRecorded, EventTypeCreditNoteApplied}, types)

	t.Run("second application is rejected and changes nothing", func(t *testing.T) {
		version := inv.Version
		err := ApplyCreditNote(inv, cn, time.Now())
		assert.ErrorIs(t, err, ErrAlreadyApplied)
		assert.Len(t, inv.Payments, 2)
		assert.Equal(t, version, inv.Version)
		assert.Equal(t, "500.00", inv.AmountDue.StringFixed())
	})

	t.Run("credit note payment cannot be voided", func(t *testing.T) {
		assert.ErrorIs(t, inv.VoidPayment(1, ""), ErrInvalidTransition)
		assert.Len(t, inv.Payments, 2)
	})

	t.Run("applied note cannot be cancelled", func(t *testing.T) {
		assert.ErrorIs(t, cn.Cancel(), ErrAlreadyApplied)
	})
}

func TestApplyCreditNote_Rejections(t *testing.T) {
	t.Run("exceeds amount due", func(t *testing.T) {
		inv := createTestInvoice(t, "100")
		require.NoError(t, inv.RecordPayment(payment(t, "90"), false))
		cn := createCreditNote(t, inv, "20")

		err := ApplyCreditNote(inv, cn, time.Now())
		assert.ErrorIs(t, err, ErrInvalidPaymentAmount)
		assert.Len(t, inv.Payments, 1)
		assert.False(t, cn.IsApplied())
	})

	t.Run("other invoice", func(t *testing.T) {
		inv := createTestInvoice(t, "100")
		other := createTestInvoice(t, "100")
		cn := createCreditNote(t, other, "10")

		assert.ErrorIs(t, ApplyCreditNote(inv, cn, time.Now()), ErrNoteInvoiceMismatch)
	})

	t.Run("cancelled note", func(t *testing.T) {
		inv := createTestInvoice(t, "100")
		cn := createCreditNote(t, inv, "10")
		require.NoError(t, cn.Cancel())

		assert.ErrorIs(t, ApplyCreditNote(inv, cn, time.Now()), ErrInvalidTransition)
		assert.Empty(t, inv.Payments)
	})

	t.Run("zero total", func(t *testing.T) {
		inv := createTestInvoice(t, "100")
		cn, err := NewCreditNote(inv, testHeader("CN-0001"), nil, "")
		require.NoError(t, err)

		assert.ErrorIs(t, ApplyCreditNote(inv, cn, time.Now()), ErrInvalidPaymentAmount)
	})

	t.Run("foreign tenant", func(t *testing.T) {
		inv := createTestInvoice(t, "100")
		cn := createCreditNote(t, inv, "10")
		cn.TenantID = uuid.New()

		assert.ErrorIs(t, ApplyCreditNote(inv, cn, time.Now()), ErrNoteInvoiceMismatch)
	})
}

func TestApplyDebitNote(t *testing.T) {
	inv := createTestInvoice(t, "1000")
	require.NoError(t, inv.RecordPayment(payment(t, "1000"), false))
	require.Equal(t, PaymentStatusPaid, inv.PaymentStatus)
	dn := createDebitNote(t, inv, "50")

	require.NoError(t, ApplyDebitNote(inv, dn, time.Now()))

	assert.Equal(t, "1050.00", inv.Total().StringFixed())
	assert.Equal(t, "1000.00", inv.Totals.Total.StringFixed(), "item totals are untouched")
	assert.Equal(t, PaymentStatusPartial, inv.PaymentStatus)
	assert.Equal(t, "50.00", inv.AmountDue.StringFixed())
	assert.Len(t, inv.Payments, 1)
	require.Len(t, inv.Adjustments, 1)
	assert.Equal(t, dn.ID, inv.Adjustments[0].DebitNoteID)
	assert.Equal(t, "DN-0001", inv.Adjustments[0].Number)
	assert.True(t, dn.IsApplied())

	events := inv.GetDomainEvents()
	applied := events[len(events)-1].(*DebitNoteAppliedEvent)
	assert.Equal(t, "1050.00", applied.NewTotal.StringFixed())

	t.Run("second application is rejected", func(t *testing.T) {
		assert.ErrorIs(t, ApplyDebitNote(inv, dn, time.Now()), ErrAlreadyApplied)
		assert.Len(t, inv.Adjustments, 1)
		assert.Equal(t, "1050.00", inv.Total().StringFixed())
	})

	t.Run("payment status follows the raised total", func(t *testing.T) {
		require.NoError(t, inv.RecordPayment(payment(t, "50"), false))
		assert.Equal(t, PaymentStatusPaid, inv.PaymentStatus)
	})
}

func TestApplyDebitNote_CancelledInvoice(t *testing.T) {
	inv := createTestInvoice(t, "100")
	dn := createDebitNote(t, inv, "10")
	require.NoError(t, inv.Cancel())

	assert.ErrorIs(t, ApplyDebitNote(inv, dn, time.Now()), ErrInvalidTransition)
	assert.False(t, dn.IsApplied())
	assert.Empty(t, inv.Adjustments)
}
