package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/streakline/internal/observability/context"
	"github.com/smallbiznis/streakline/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/baggage"
)

func TestWithRequestBaggage(t *testing.T) {
	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = correlation.ContextWithCorrelationID(ctx, "01HZY3C6J8N9Q2R4S5T6V7W8X9")

	bag := baggage.FromContext(withRequestBaggage(ctx))
	assert.Equal(t, "req-1", bag.Member("request_id").Value())
	assert.Equal(t, "01HZY3C6J8N9Q2R4S5T6V7W8X9", bag.Member("correlation_id").Value())
}

func TestWithRequestBaggageSkipsEmpty(t *testing.T) {
	bag := baggage.FromContext(withRequestBaggage(context.Background()))
	assert.Equal(t, 0, bag.Len())
}

func TestGinMiddlewareKeepsResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/v1/streaks", func(c *gin.Context) {
		c.Set("streak_outcome", "continued")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/streaks", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
