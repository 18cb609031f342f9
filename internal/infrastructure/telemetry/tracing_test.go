package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "invoice.send",
		telemetry.WithAttribute("document_number", "INV-0001"),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "invoice.send", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, "INV-0001", attrMap(spans[0].Attributes())["document_number"].AsString())
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, parent := telemetry.StartServiceSpan(context.Background(), "payment", "record")
	_, child := telemetry.StartServiceSpan(ctx, "number", "allocate")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "number.allocate", spans[0].Name())
	assert.Equal(t, "payment.record", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Equal(t, trace.SpanKindInternal, spans[1].SpanKind())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	id := uuid.New()

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentID, id,
		telemetry.SpanAttrAmount, "12.50",
		telemetry.SpanAttrPaymentIndex, 2,
		"minor_units", int64(1250),
		"ratio", 0.5,
		"applied", true,
		"fields", []string{"name", "email"},
		42, "non-string key is skipped",
		"dangling",
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrCurrency, "USD")
	span.End()

	attrs := attrMap(sr.Ended()[0].Attributes())
	assert.Equal(t, id.String(), attrs["document_id"].AsString())
	assert.Equal(t, "12.50", attrs["amount"].AsString())
	assert.Equal(t, int64(2), attrs["payment_index"].AsInt64())
	assert.Equal(t, int64(1250), attrs["minor_units"].AsInt64())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
	assert.True(t, attrs["applied"].AsBool())
	assert.Equal(t, []string{"name", "email"}, attrs["fields"].AsStringSlice())
	assert.Equal(t, "USD", attrs["currency"].AsString())
	assert.NotContains(t, attrs, "dangling")
	assert.Len(t, attrs, 8)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.RecordError(span, errors.New("version conflict"))
	span.End()

	s := sr.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "version conflict", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)

	t.Run("nil error leaves status unset", func(t *testing.T) {
		_, span := telemetry.StartSpan(context.Background(), "ok")
		telemetry.RecordError(span, nil)
		span.End()
		assert.Equal(t, codes.Unset, sr.Ended()[1].Status().Code)
	})
}

func TestSetOKAndAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "op")
	telemetry.AddEvent(span, "number_allocated", "document_type", "invoice", "number", "INV-0042")
	telemetry.SetOK(span)
	span.End()

	s := sr.Ended()[0]
	assert.Equal(t, codes.Ok, s.Status().Code)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "number_allocated", s.Events()[0].Name)
	assert.Equal(t, "INV-0042", attrMap(s.Events()[0].Attributes)["number"].AsString())
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.SetAttribute(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "e")
	})
}
