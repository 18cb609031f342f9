package invoicing

import (
	"context"

	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per business event so
// payments, note applications and issued numbers can be traced in the logs
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		invoicing.EventTypeDocumentCreated,
		invoicing.EventTypePaymentRecorded,
		invoicing.EventTypePaymentVoided,
		invoicing.EventTypeCreditNoteApplied,
		invoicing.EventTypeDebitNoteApplied,
		partner.EventTypeCustomerUpdated,
	}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *invoicing.DocumentCreatedEvent:
		fields = append(fields,
			zap.String("document_type", e.DocumentType.String()),
			zap.String("number", e.Number),
			zap.String("total", e.Total.String()),
		)
	case *invoicing.PaymentRecordedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("amount", e.Amount.String()),
			zap.String("method", string(e.Method)),
			zap.String("payment_status", string(e.PaymentStatus)),
		)
	case *invoicing.PaymentVoidedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.Int("index", e.Index),
			zap.String("amount", e.Amount.String()),
			zap.String("reason", e.Reason),
			zap.String("payment_status", string(e.PaymentStatus)),
		)
	case *invoicing.CreditNoteAppliedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("credit_note_number", e.CreditNoteNumber),
			zap.String("amount", e.Amount.String()),
			zap.String("payment_status", string(e.PaymentStatus)),
		)
	case *invoicing.DebitNoteAppliedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("debit_note_number", e.DebitNoteNumber),
			zap.String("amount", e.Amount.String()),
			zap.String("new_total", e.NewTotal.String()),
			zap.String("payment_status", string(e.PaymentStatus)),
		)
	case *partner.CustomerUpdatedEvent:
		fields = append(fields,
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("updated_by", e.UpdatedBy),
		)
	}

	h.logger.Info("business event", fields...)
	return nil
}
