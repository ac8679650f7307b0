package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexandrebha/cybook/circulation/oteladapters"
)

func newTracedCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func spanAttribute(span tracetest.SpanStub, key string) (string, bool) {
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			return attr.Value.AsString(), true
		}
	}

	return "", false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// arrange
	collector, exporter := newTracedCollector()

	// act
	ctx, span := collector.StartSpan(context.Background(), "circulation.borrow", map[string]string{"operation": "borrow"})
	span.AddAttribute("book_id", "978-1")
	collector.FinishSpan(span, "success", map[string]string{"duration_ms": "1.500"})

	// assert
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "circulation.borrow", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, want := range map[string]string{"operation": "borrow", "book_id": "978-1", "duration_ms": "1.500"} {
		got, found := spanAttribute(spans[0], key)
		assert.True(t, found, key)
		assert.Equal(t, want, got, key)
	}
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
		outcome      string
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "rejected", expectedCode: codes.Ok, outcome: "rejected"},
		{status: "error", expectedCode: codes.Error},
		{status: "canceled", expectedCode: codes.Error},
		{status: "timeout", expectedCode: codes.Error},
		{status: "conflict", expectedCode: codes.Error},
		{status: "something_else", expectedCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// arrange
			collector, exporter := newTracedCollector()
			_, span := collector.StartSpan(context.Background(), "circulation.return", nil)

			// act
			collector.FinishSpan(span, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)

			if tc.outcome != "" {
				outcome, found := spanAttribute(spans[0], "outcome")
				assert.True(t, found)
				assert.Equal(t, tc.outcome, outcome)
			}
		})
	}
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)            {}
func (foreignSpan) AddAttribute(string, string) {}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContexts(t *testing.T) {
	// arrange
	collector, exporter := newTracedCollector()

	// act
	collector.FinishSpan(foreignSpan{}, "success", nil)

	// assert
	assert.Empty(t, exporter.GetSpans())
}

func Test_TracingCollector_NestsChildSpans(t *testing.T) {
	// arrange
	collector, exporter := newTracedCollector()

	// act
	parentCtx, parent := collector.StartSpan(context.Background(), "borrowbook.handle", nil)
	_, child := collector.StartSpan(parentCtx, "circulation.transaction", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}
