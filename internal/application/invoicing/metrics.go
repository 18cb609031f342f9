package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
)

// MetricsRecorder is the part of telemetry.BusinessMetrics the invoicing
// services report to
type MetricsRecorder interface {
	RecordDocumentCreated(ctx context.Context, tenantID uuid.UUID, documentType, currency string, totalMinor int64)
	RecordNumberAllocated(ctx context.Context, documentType string)
	RecordNoteApplied(ctx context.Context, tenantID uuid.UUID, documentType string)
	RecordPayment(ctx context.Context, tenantID uuid.UUID, method, currency string, amountMinor int64, outcome telemetry.Outcome)
	RecordSnapshotSync(ctx context.Context, reason string, documentsUpdated int, d time.Duration, err error)
}

var _ MetricsRecorder = (*telemetry.BusinessMetrics)(nil)

type noopMetrics struct{}

func (noopMetrics) RecordDocumentCreated(context.Context, uuid.UUID, string, string, int64) {}
func (noopMetrics) RecordNumberAllocated(context.Context, string) {}
func (noopMetrics) RecordNoteApplied(context.Context, uuid.UUID, string) {}
func (noopMetrics) RecordPayment(context.Context, uuid.UUID, string, string, int64, telemetry.Outcome) {}
func (noopMetrics) RecordSnapshotSync(context.Context, string, int, time.Duration, error) {}

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
