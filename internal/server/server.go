// Package server exposes assessments, assistants and planning over a JSON
// HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eadteachers/teachkit/internal/assessment"
	"github.com/eadteachers/teachkit/internal/assistant"
	"github.com/eadteachers/teachkit/internal/config"
	"github.com/eadteachers/teachkit/internal/credential"
	"github.com/eadteachers/teachkit/internal/logger"
	"github.com/eadteachers/teachkit/internal/metrics"
	"github.com/eadteachers/teachkit/internal/planner"
)

const shutdownTimeout = 30 * time.Second

// Deps are the services the handlers call. Credentials and Metrics are
// optional; their routes are not registered when nil.
type Deps struct {
	Generator   *assessment.Generator
	Grader      *assessment.Grader
	Teacher     *assistant.Assistant
	Student     *assistant.Assistant
	Planner     *planner.Client
	Credentials *credential.Store
	Sessions    SessionStore
	Metrics     *metrics.Metrics
	Log         *logger.Logger
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	cfg    config.ServerConfig
	log    *logger.Logger
	engine *gin.Engine
}

// New builds the router for deps.
func New(deps Deps, cfg config.ServerConfig) *Server {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Sessions == nil {
		deps.Sessions = NewMemoryStore(DefaultSessionTTL)
	}
	switch cfg.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	}

	s := &Server{deps: deps, cfg: cfg, log: deps.Log, engine: gin.New()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery(), RequestLogger(s.log), CORS(s.cfg.AllowedOrigins))
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.Middleware())
		r.GET("/metrics", s.deps.Metrics.Handler())
	}
	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.Use(RateLimiter(s.cfg.RateLimit, s.cfg.RateWindow))

	api.GET("/options", s.options)

	if s.deps.Credentials != nil {
		api.GET("/credential", s.credentialStatus)
		api.PUT("/credential", s.setCredential)
		api.DELETE("/credential", s.clearCredential)
	}

	assessments := api.Group("/assessments")
	assessments.POST("", s.createAssessment)
	assessments.GET("/:id", s.getAssessment)
	assessments.PUT("/:id/mcq/:itemId", s.selectAnswer)
	assessments.POST("/:id/short/:itemId", s.submitShortAnswer)
	assessments.GET("/:id/score", s.getScore)
	assessments.GET("/:id/export", s.exportAssessment)

	api.POST("/assistant/:role", s.ask)

	plans := api.Group("/plans")
	plans.POST("/term", s.termPlan)
	plans.POST("/lesson", s.lessonPlan)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server exited")
	return nil
}
