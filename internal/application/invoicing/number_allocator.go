package invoicing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/company"
	"github.com/invoicing/backend/internal/domain/invoicing"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// NumberAllocator hands out document numbers such as INV-0042.
// The counter is bumped atomically in the store before the number is
// formatted, so concurrent callers never share a number. A number is
// consumed even if the document that asked for it is never saved.
type NumberAllocator struct {
	counters invoicing.CounterStore
	padWidth int
	metrics  MetricsRecorder
	logger   *zap.Logger
}

// NewNumberAllocator creates a new NumberAllocator
func NewNumberAllocator(counters invoicing.CounterStore, padWidth int, metrics MetricsRecorder, logger *zap.Logger) *NumberAllocator {
	if padWidth <= 0 {
		padWidth = invoicing.DefaultNumberPadWidth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NumberAllocator{
		counters: counters,
		padWidth: padWidth,
		metrics:  metricsOrNoop(metrics),
		logger:   logger,
	}
}

// GetNextNumber allocates the next number of docType for the company.
// There is no retry: a failed increment surfaces to the caller.
func (a *NumberAllocator) GetNextNumber(ctx context.Context, companyID uuid.UUID, docType invoicing.DocumentType) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "numbering", "next",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, companyID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrDocumentType, docType.String()),
	)
	defer span.End()

	if !docType.IsValid() {
		telemetry.RecordError(span, invoicing.ErrInvalidDocumentType)
		return "", invoicing.ErrInvalidDocumentType
	}

	counter, err := a.counters.Increment(ctx, companyID, docType)
	if err != nil {
		telemetry.RecordError(span, err)
		if !errors.Is(err, company.ErrCompanyNotFound) {
			a.logger.Error("failed to allocate document number",
				zap.String("company_id", companyID.String()),
				zap.String("document_type", docType.String()),
				zap.Error(err),
			)
		}
		return "", err
	}

	number := invoicing.FormatDocumentNumber(docType, counter, a.padWidth)
	telemetry.SetAttribute(span, telemetry.SpanAttrDocumentNumber, number)
	a.metrics.RecordNumberAllocated(ctx, docType.String())

	return number, nil
}
