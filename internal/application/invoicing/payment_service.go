package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/shared/valueobject"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultIdempotencyTTL is how long a payment idempotency key is remembered
const DefaultIdempotencyTTL = 24 * time.Hour

// PaymentServiceConfig holds the collaborators of PaymentService
type PaymentServiceConfig struct {
	Invoices         invoicing.InvoiceRepository
	Idempotency      shared.IdempotencyStore
	IdempotencyTTL   time.Duration
	AllowOverpayment bool
	Publisher        shared.EventPublisher
	Metrics          MetricsRecorder
	Logger           *zap.Logger
}

// PaymentService records and voids payments on invoices. Every change is
// persisted with a single version-checked update of the invoice, so two
// concurrent payments can never both be appended to the same version.
type PaymentService struct {
	invoices         invoicing.InvoiceRepository
	idempotency      shared.IdempotencyStore
	idempotencyTTL   time.Duration
	allowOverpayment bool
	publisher        shared.EventPublisher
	metrics          MetricsRecorder
	logger           *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &PaymentService{
		invoices:         cfg.Invoices,
		idempotency:      cfg.Idempotency,
		idempotencyTTL:   ttl,
		allowOverpayment: cfg.AllowOverpayment,
		publisher:        cfg.Publisher,
		metrics:          metricsOrNoop(cfg.Metrics),
		logger:           logger,
	}
}

// RecordPayment appends a payment to the invoice ledger. A request that
// repeats the idempotency key of a finished payment gets the invoice back
// unchanged; one that repeats a key still being processed gets
// ErrPaymentInProgress. A key is released again when recording fails.
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, invoiceID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, req.Method),
	)
	defer span.End()

	method := invoicing.PaymentMethod(req.Method)

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := idempotencyKey(tenantID, invoiceID, req.IdempotencyKey)
		claimed, claimErr := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
		if claimErr != nil {
			telemetry.RecordError(span, claimErr)
			return nil, fmt.Errorf("failed to check idempotency key: %w", claimErr)
		}
		if !claimed {
			return s.replay(ctx, span, tenantID, invoiceID, req)
		}
		defer func() {
			if err == nil {
				if _, doneErr := s.idempotency.MarkProcessed(context.WithoutCancel(ctx), key+completedSuffix, s.idempotencyTTL); doneErr != nil {
					s.logger.Warn("failed to mark idempotency key completed",
						zap.String("idempotency_key", req.IdempotencyKey),
						zap.Error(doneErr),
					)
				}
				return
			}
			if releaseErr := s.idempotency.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
				s.logger.Warn("failed to release idempotency key",
					zap.String("idempotency_key", req.IdempotencyKey),
					zap.Error(releaseErr),
				)
			}
		}()
	}

	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	amount, err := valueobject.FromDecimal(req.Amount, inv.Currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAmount, amount.StringFixed(),
		telemetry.SpanAttrCurrency, inv.Currency.String(),
	)

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	payment, err := invoicing.NewPayment(amount, date, method, req.Reference)
	if err != nil {
		s.rejected(ctx, span, inv, req.Method, err)
		return nil, err
	}
	if err := inv.RecordPayment(payment, s.allowOverpayment); err != nil {
		s.rejected(ctx, span, inv, req.Method, err)
		return nil, err
	}

	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordPayment(ctx, tenantID, req.Method, inv.Currency.String(), 0, telemetry.OutcomeFailed)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentStatus, string(inv.PaymentStatus))
	s.metrics.RecordPayment(ctx, tenantID, req.Method, inv.Currency.String(), amount.MinorUnits(), telemetry.OutcomeSuccess)
	s.logger.Info("payment recorded",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.Number),
		zap.String("amount", amount.String()),
		zap.String("payment_status", string(inv.PaymentStatus)),
	)
	publishEvents(ctx, s.publisher, s.logger, inv)

	r := ToInvoiceResponse(inv)
	return &r, nil
}

// VoidPayment removes the payment at index from the ledger and recomputes
// the payment status
func (s *PaymentService) VoidPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, index int, req VoidPaymentRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "void",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentID, invoiceID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentIndex, index),
	)
	defer span.End()

	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := inv.VoidPayment(index, req.Reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentStatus, string(inv.PaymentStatus))
	s.logger.Info("payment voided",
		zap.String("invoice_id", inv.ID.String()),
		zap.Int("index", index),
		zap.String("payment_status", string(inv.PaymentStatus)),
	)
	publishEvents(ctx, s.publisher, s.logger, inv)

	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// replay answers a request whose idempotency key was already claimed
func (s *PaymentService) replay(ctx context.Context, span trace.Span, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	key := idempotencyKey(tenantID, invoiceID, req.IdempotencyKey)
	completed, err := s.idempotency.IsProcessed(ctx, key+completedSuffix)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if !completed {
		telemetry.AddEvent(span, "request_in_progress", "idempotency_key", req.IdempotencyKey)
		s.logger.Info("payment request still in progress",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("idempotency_key", req.IdempotencyKey),
		)
		return nil, invoicing.ErrPaymentInProgress
	}

	telemetry.AddEvent(span, "duplicate_request", "idempotency_key", req.IdempotencyKey)
	s.metrics.RecordPayment(ctx, tenantID, req.Method, "", 0, telemetry.OutcomeDuplicate)
	s.logger.Info("duplicate payment request ignored",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("idempotency_key", req.IdempotencyKey),
	)
	inv, err := s.invoices.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	r := ToInvoiceResponse(inv)
	return &r, nil
}

// rejected records a payment refused by the ledger rules
func (s *PaymentService) rejected(ctx context.Context, span trace.Span, inv *invoicing.Invoice, method string, err error) {
	telemetry.RecordError(span, err)
	outcome := telemetry.OutcomeFailed
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		outcome = telemetry.OutcomeRejected
	}
	s.metrics.RecordPayment(ctx, inv.TenantID, method, inv.Currency.String(), 0, outcome)
}

// completedSuffix marks a claimed key whose payment was saved
const completedSuffix = ":done"

// idempotencyKey scopes a client key to the tenant and invoice
func idempotencyKey(tenantID, invoiceID uuid.UUID, clientKey string) string {
	return fmt.Sprintf("payment:%s:%s:%s", tenantID, invoiceID, clientKey)
}
