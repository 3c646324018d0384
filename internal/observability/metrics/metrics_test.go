package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	streakdomain "github.com/smallbiznis/streakline/internal/streak/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	"gorm.io/gorm"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("outcome", "continued"),
		attribute.String("user_id", "u-1"),
		attribute.String("subject_kind", "subject"),
	)
	require.Len(t, attrs, 2)
	keys := []attribute.Key{attrs[0].Key, attrs[1].Key}
	assert.Contains(t, keys, attribute.Key("outcome"))
	assert.Contains(t, keys, attribute.Key("subject_kind"))
}

func TestClassifyStoreReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: StoreReasonDeadlineExceeded},
		{name: "version", err: fmt.Errorf("update: %w", streakdomain.ErrConflict), want: StoreReasonVersionMismatch},
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: StoreReasonLockTimeout},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: StoreReasonSerializationFailure},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: StoreReasonDeadlock},
		{name: "unique", err: gorm.ErrDuplicatedKey, want: StoreReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: StoreReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStoreReason(tc.err))
		})
	}
}

func TestObserveTxCountsConflicts(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newStoreMetrics(registry, Config{ServiceName: "streakline", Environment: "test"})

	m.ObserveTx(StoreOperationRecordActivity, time.Now(), streakdomain.ErrConflict)
	m.ObserveTx(StoreOperationRecordActivity, time.Now(), nil)
	m.ObserveTx(StoreOperationRecordActivity, time.Now(), errors.New("boom"))

	got := testutil.ToFloat64(m.conflicts.WithLabelValues(StoreOperationRecordActivity, StoreReasonVersionMismatch))
	assert.Equal(t, 1.0, got)
	assert.Equal(t, 3, testutil.CollectAndCount(m.txDuration))
}

func TestNewStoreMetricsReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newStoreMetrics(registry, Config{})
	second := newStoreMetrics(registry, Config{})

	first.ObserveTx(StoreOperationUseFreeze, time.Now(), streakdomain.ErrConflict)
	got := testutil.ToFloat64(second.conflicts.WithLabelValues(StoreOperationUseFreeze, StoreReasonVersionMismatch))
	assert.Equal(t, 1.0, got)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordActivity(context.Background(), "login", "started", "aggregate", 1)
	m.RecordFreezeEarned(context.Background(), "aggregate")
	m.RecordConflictRetry(context.Background(), StoreReasonVersionMismatch)

	var s *StoreMetrics
	s.ObserveTx(StoreOperationRecordActivity, time.Now(), nil)
	s.ObserveAttempts(StoreOperationRecordActivity, 2)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordActivity(context.Background(), "quiz_submit", "continued", "subject", 4)
	m.RecordStreakReset(context.Background(), "subject")
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hm, err := NewHTTPMetrics(noop.NewMeterProvider())
	require.NoError(t, err)

	r := gin.New()
	r.Use(GinMiddleware(hm))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
