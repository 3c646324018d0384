package correlation

import (
	"context"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"
)

// HeaderCorrelationID carries a caller supplied correlation id.
const HeaderCorrelationID = "X-Correlation-ID"

// correlationKey is an unexported type for context keys within this package.
type correlationKey struct{}

// ExtractCorrelationID fetches a correlation ID from the context if present.
func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(correlationKey{}).(string); ok {
		return val
	}
	return ""
}

// ContextWithCorrelationID sets the correlation ID onto the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// EnsureCorrelationID guarantees a correlation ID on the context, generating one when missing.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	cid := ExtractCorrelationID(ctx)
	if cid == "" {
		cid = ulid.Make().String()
	}
	return ContextWithCorrelationID(ctx, cid), cid
}

// Annotate copies correlation and tracing identifiers from ctx into
// metadata. Existing keys are kept.
func Annotate(ctx context.Context, metadata map[string]any) {
	if metadata == nil {
		return
	}
	if cid := ExtractCorrelationID(ctx); cid != "" {
		setIfAbsent(metadata, "correlation_id", cid)
	}

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return
	}
	setIfAbsent(metadata, "trace_id", sc.TraceID().String())
	setIfAbsent(metadata, "span_id", sc.SpanID().String())
}

func setIfAbsent(metadata map[string]any, key, value string) {
	if _, ok := metadata[key]; ok {
		return
	}
	metadata[key] = value
}
