package ctxlogger

import (
	"context"
	"testing"

	"github.com/smallbiznis/streakline/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsCorrelationAndStreak(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetServiceName("streakline")

	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-1")
	ctx = ContextWithStreakID(ctx, "alice-overall")
	WithContext(ctx, zap.New(core)).Info("hello")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "cid-1", fields["correlation_id"])
	assert.Equal(t, "alice-overall", fields["streak_id"])
	assert.Equal(t, "streakline", fields["service_name"])
	assert.NotContains(t, fields, "trace_id")
}
