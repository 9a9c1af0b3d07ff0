// Package metrics exposes Prometheus counters for the HTTP API and for
// model calls.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eadteachers/teachkit/internal/apperr"
	"github.com/eadteachers/teachkit/internal/llm"
)

// Metrics owns a private registry so several servers can coexist in one
// process.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	LLMCalls        *prometheus.CounterVec
	LLMDuration     *prometheus.HistogramVec
	LLMTokens       *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teachkit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "teachkit_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 30},
			},
			[]string{"method", "endpoint"},
		),
		LLMCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teachkit_llm_requests_total",
				Help: "Model calls by purpose and outcome kind",
			},
			[]string{"purpose", "outcome"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "teachkit_llm_request_duration_seconds",
				Help:    "Duration of model calls",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"purpose"},
		),
		LLMTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teachkit_llm_tokens_total",
				Help: "Tokens consumed by direction",
			},
			[]string{"purpose", "direction"},
		),
	}

	m.registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.LLMCalls,
		m.LLMDuration,
		m.LLMTokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records every request by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// InstrumentProvider counts calls made through p.
func (m *Metrics) InstrumentProvider(p llm.Provider) llm.Provider {
	return &instrumented{inner: p, m: m}
}

type instrumented struct {
	inner llm.Provider
	m     *Metrics
}

func (p *instrumented) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	purpose := llm.PurposeFrom(ctx)
	start := time.Now()
	resp, err := p.inner.Generate(ctx, req)
	p.m.LLMDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = string(apperr.KindOf(err))
	}
	p.m.LLMCalls.WithLabelValues(purpose, outcome).Inc()

	if resp != nil {
		p.m.LLMTokens.WithLabelValues(purpose, "input").Add(float64(resp.Usage.InputTokens))
		p.m.LLMTokens.WithLabelValues(purpose, "output").Add(float64(resp.Usage.OutputTokens))
	}
	return resp, err
}

func (p *instrumented) ModelID() string { return p.inner.ModelID() }
