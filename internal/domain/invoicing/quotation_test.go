package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestQuotation(t *testing.T) *Quotation {
	validUntil := time.Now().AddDate(0, 0, 30)
	q, err := NewQuotation(uuid.New(), testHeader("QT-0001"), []ItemInput{item("Website", "1", "2500", "20")}, &validUntil)
	require.NoError(t, err)
	return q
}

func TestNewQuotation(t *testing.T) {
	q := createTestQuotation(t)
	assert.Equal(t, DocumentTypeQuotation, q.Type)
	assert.Equal(t, DocumentStatusDraft, q.Status)
	assert.Equal(t, "3000.00", q.Total().StringFixed())
	assert.NotNil(t, q.ValidUntil)
	assert.Nil(t, q.ConvertedInvoiceID)
}

func TestQuotation_Transition(t *testing.T) {
	tests := []struct {
		name string
		path []DocumentStatus
		to   DocumentStatus
		ok   bool
	}{
		{"draft to sent", nil, DocumentStatusSent, true},
		{"draft to cancelled", nil, DocumentStatusCancelled, true},
		{"draft to accepted", nil, DocumentStatusAccepted, false},
		{"sent to accepted", []DocumentStatus{DocumentStatusSent}, DocumentStatusAccepted, true},
		{"sent to rejected", []DocumentStatus{DocumentStatusSent}, DocumentStatusRejected, true},
		{"sent to expired", []DocumentStatus{DocumentStatusSent}, DocumentStatusExpired, true},
		{"sent to draft", []DocumentStatus{DocumentStatusSent}, DocumentStatusDraft, false},
		{"rejected is terminal", []DocumentStatus{DocumentStatusSent, DocumentStatusRejected}, DocumentStatusAccepted, false},
		{"converted only via conversion", []DocumentStatus{DocumentStatusSent, DocumentStatusAccepted}, DocumentStatusConverted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := createTestQuotation(t)
			for _, s := range tt.path {
				require.NoError(t, q.Transition(s))
			}
			err := q.Transition(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, q.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestQuotation_SendRequiresItems(t *testing.T) {
	q, err := NewQuotation(uuid.New(), testHeader("QT-0002"), nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, q.Transition(DocumentStatusSent), ErrEmptyDocument)
}

func TestQuotation_MarkConverted(t *testing.T) {
	q := createTestQuotation(t)
	invoiceID := uuid.New()

	assert.ErrorIs(t, q.MarkConverted(invoiceID), ErrInvalidTransition)

	require.NoError(t, q.Transition(DocumentStatusSent))
	require.NoError(t, q.Transition(DocumentStatusAccepted))
	require.NoError(t, q.MarkConverted(invoiceID))
	assert.Equal(t, DocumentStatusConverted, q.Status)
	require.NotNil(t, q.ConvertedInvoiceID)
	assert.Equal(t, invoiceID, *q.ConvertedInvoiceID)

	assert.ErrorIs(t, q.MarkConverted(uuid.New()), ErrInvalidTransition)
}
