package correlation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestEnsureCorrelationIDKeepsExisting(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "cid-1")

	_, cid := EnsureCorrelationID(ctx)
	assert.Equal(t, "cid-1", cid)

	ctx, generated := EnsureCorrelationID(context.Background())
	assert.Len(t, generated, 26)
	assert.Equal(t, generated, ExtractCorrelationID(ctx))
}

func TestAnnotate(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	ctx = ContextWithCorrelationID(ctx, "cid-1")

	metadata := map[string]any{"correlation_id": "caller"}
	Annotate(ctx, metadata)

	assert.Equal(t, "caller", metadata["correlation_id"])
	assert.Equal(t, traceID.String(), metadata["trace_id"])
	assert.Equal(t, spanID.String(), metadata["span_id"])

	Annotate(ctx, nil)
}
