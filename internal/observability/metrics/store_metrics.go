package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	streakdomain "github.com/smallbiznis/streakline/internal/streak/domain"
	"github.com/smallbiznis/streakline/pkg/db"
)

const (
	StoreReasonVersionMismatch      = "version_mismatch"
	StoreReasonUniqueViolation      = "unique_violation"
	StoreReasonSerializationFailure = "serialization_failure"
	StoreReasonDeadlock             = "deadlock"
	StoreReasonLockTimeout          = "db_lock_timeout"
	StoreReasonDeadlineExceeded     = "deadline_exceeded"
	StoreReasonUnknown              = "unknown"
)

const (
	StoreResultOK       = "ok"
	StoreResultConflict = "conflict"
	StoreResultError    = "error"
)

const (
	StoreOperationRecordActivity = "record_activity"
	StoreOperationUseFreeze      = "use_freeze"
	StoreOperationUpdateTimezone = "update_timezone"
)

// StoreMetrics tracks the streak write path: transaction latency and the
// contention that forced retries.
type StoreMetrics struct {
	txDuration *prometheus.HistogramVec
	conflicts  *prometheus.CounterVec
	attempts   *prometheus.HistogramVec
}

var (
	storeMetricsOnce sync.Once
	storeMetrics     *StoreMetrics
)

// Store returns the singleton store metrics registry.
func Store() *StoreMetrics {
	return StoreWithConfig(Config{})
}

// StoreWithConfig returns the singleton store metrics registry using config labels.
func StoreWithConfig(cfg Config) *StoreMetrics {
	storeMetricsOnce.Do(func() {
		storeMetrics = newStoreMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return storeMetrics
}

// ResetStoreMetricsForTest resets the store metrics singleton for tests.
func ResetStoreMetricsForTest() {
	storeMetricsOnce = sync.Once{}
	storeMetrics = nil
}

func newStoreMetrics(registerer prometheus.Registerer, cfg Config) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "streakline"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	txDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "streakline_store_tx_duration_seconds",
		Help:        "Streak write transaction latency by operation and result.",
		Buckets:     []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		ConstLabels: constLabels,
	}, []string{"operation", "result"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "streakline_store_conflicts_total",
		Help:        "Streak write conflicts by reason.",
		ConstLabels: constLabels,
	}, []string{"operation", "reason"})
	attempts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "streakline_store_attempts",
		Help:        "Attempts needed to commit a streak write.",
		Buckets:     []float64{1, 2, 3, 4, 6, 8},
		ConstLabels: constLabels,
	}, []string{"operation"})

	txDuration = registerHistogramVec(registerer, txDuration)
	conflicts = registerCounterVec(registerer, conflicts)
	attempts = registerHistogramVec(registerer, attempts)

	return &StoreMetrics{
		txDuration: txDuration,
		conflicts:  conflicts,
		attempts:   attempts,
	}
}

func registerCounterVec(registerer prometheus.Registerer, vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return vec
}

func registerHistogramVec(registerer prometheus.Registerer, vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
	}
	return vec
}

// ObserveTx records one transaction attempt.
func (m *StoreMetrics) ObserveTx(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := StoreResultOK
	if err != nil {
		result = StoreResultError
		if IsStoreConflict(err) {
			result = StoreResultConflict
		}
	}
	m.txDuration.WithLabelValues(operation, result).Observe(time.Since(started).Seconds())
	if result == StoreResultConflict {
		m.conflicts.WithLabelValues(operation, ClassifyStoreReason(err)).Inc()
	}
}

// ObserveAttempts records how many attempts a committed or abandoned write took.
func (m *StoreMetrics) ObserveAttempts(operation string, attempts int) {
	if m == nil || attempts <= 0 {
		return
	}
	m.attempts.WithLabelValues(operation).Observe(float64(attempts))
}

// IsStoreConflict reports whether err is contention worth retrying.
func IsStoreConflict(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, streakdomain.ErrConflict) || db.IsRetryableErr(err)
}

// ClassifyStoreReason maps a write failure to a low-cardinality reason label.
func ClassifyStoreReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return StoreReasonDeadlineExceeded
	case db.IsDeadlock(err):
		return StoreReasonDeadlock
	case db.IsSerializationFailure(err):
		return StoreReasonSerializationFailure
	case db.IsLockTimeout(err):
		return StoreReasonLockTimeout
	case db.IsDuplicateKeyErr(err):
		return StoreReasonUniqueViolation
	case errors.Is(err, streakdomain.ErrConflict):
		return StoreReasonVersionMismatch
	default:
		return StoreReasonUnknown
	}
}
