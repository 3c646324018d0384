package tracing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/smallbiznis/streakline/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSafeAttributesDropsUserFields(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/v1/streaks/activity"),
		attribute.String("user_id", "alice"),
		attribute.String("timezone", "Asia/Jakarta"),
	)

	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsOuterMessage(t *testing.T) {
	err := fmt.Errorf("load streak record: %w", errors.New("user alice not reachable"))

	assert.EqualError(t, SafeError(err), "load streak record")
	assert.Nil(t, SafeError(nil))
}

func TestCorrelationSpanProcessorTagsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(&correlationSpanProcessor{}),
		sdktrace.WithSpanProcessor(recorder),
	)

	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-1")
	_, span := provider.Tracer("test").Start(ctx, "record_activity")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.String("correlation_id", "cid-1"))
}
