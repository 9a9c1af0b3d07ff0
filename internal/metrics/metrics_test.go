package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eadteachers/teachkit/internal/llm"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/healthz", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "teachkit_http_requests_total"))
}

func TestInstrumentProvider(t *testing.T) {
	m := New()
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "ok", Usage: llm.Usage{InputTokens: 10, OutputTokens: 4}},
		llm.MockResponse{Err: &llm.ErrRateLimit{}},
	)
	p := m.InstrumentProvider(mock)
	ctx := llm.WithPurpose(context.Background(), "grading")

	_, err := p.Generate(ctx, llm.Request{})
	require.NoError(t, err)
	_, err = p.Generate(ctx, llm.Request{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMCalls.WithLabelValues("grading", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMCalls.WithLabelValues("grading", "backend_failure")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.LLMTokens.WithLabelValues("grading", "input")))
	assert.Equal(t, "mock", p.ModelID())
}
