package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes streak-level instruments.
type Metrics struct {
	activities       metric.Int64Counter
	freezesEarned    metric.Int64Counter
	freezesConsumed  metric.Int64Counter
	streakResets     metric.Int64Counter
	conflictRetries  metric.Int64Counter
	rateLimitAllowed metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
	streakLength     metric.Int64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the streak metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "streakline"
	}
	meter := provider.Meter(name)

	activities, err := meter.Int64Counter("streakline_activities_total")
	if err != nil {
		return nil, err
	}
	freezesEarned, err := meter.Int64Counter("streakline_freezes_earned_total")
	if err != nil {
		return nil, err
	}
	freezesConsumed, err := meter.Int64Counter("streakline_freezes_consumed_total")
	if err != nil {
		return nil, err
	}
	streakResets, err := meter.Int64Counter("streakline_streak_resets_total")
	if err != nil {
		return nil, err
	}
	conflictRetries, err := meter.Int64Counter("streakline_conflict_retries_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("streakline_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("streakline_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}
	streakLength, err := meter.Int64Histogram("streakline_streak_length_days",
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 7, 14, 30, 60, 100, 365),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		activities:       activities,
		freezesEarned:    freezesEarned,
		freezesConsumed:  freezesConsumed,
		streakResets:     streakResets,
		conflictRetries:  conflictRetries,
		rateLimitAllowed: rateLimitAllowed,
		rateLimitDenied:  rateLimitDenied,
		streakLength:     streakLength,
	}, nil
}

// RecordActivity counts an applied activity and the streak it produced.
func (m *Metrics) RecordActivity(ctx context.Context, activityType, outcome, subjectKind string, currentStreak int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("activity_type", strings.TrimSpace(activityType)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
		attribute.String("subject_kind", strings.TrimSpace(subjectKind)),
	)
	m.activities.Add(ctx, 1, metric.WithAttributes(attrs...))
	if currentStreak > 0 {
		m.streakLength.Record(ctx, int64(currentStreak), metric.WithAttributes(attrs...))
	}
}

func (m *Metrics) RecordFreezeEarned(ctx context.Context, subjectKind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("subject_kind", strings.TrimSpace(subjectKind)))
	m.freezesEarned.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFreezeConsumed counts freezes spent, by reason (bridge or manual).
func (m *Metrics) RecordFreezeConsumed(ctx context.Context, subjectKind, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("subject_kind", strings.TrimSpace(subjectKind)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.freezesConsumed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordStreakReset(ctx context.Context, subjectKind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("subject_kind", strings.TrimSpace(subjectKind)))
	m.streakResets.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordConflictRetry(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.conflictRetries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"activity_type": {},
	"outcome":       {},
	"subject_kind":  {},
	"endpoint":      {},
	"status_code":   {},
	"reason":        {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
