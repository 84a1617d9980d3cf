// Package api exposes the transcript processing pipeline and the feedback
// store over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
	"github.com/physician-notetaker/internal/feedback"
	"github.com/physician-notetaker/internal/middleware"
	"github.com/physician-notetaker/internal/service"
)

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	pipeline      *service.Pipeline
	feedbackStore feedback.Store
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
	healthCheck   func(context.Context) error
}

// SetHealthCheck registers a dependency probe for the health endpoint,
// typically the database ping. Without one the endpoint always reports
// healthy.
func (s *Server) SetHealthCheck(check func(context.Context) error) {
	s.healthCheck = check
}

// NewServer creates a new HTTP server instance. feedbackStore may be nil,
// in which case the feedback endpoints answer 503.
func NewServer(
	configManager domain.ConfigManager,
	pipeline *service.Pipeline,
	feedbackStore feedback.Store,
	logger *logrus.Logger,
) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	if cfg.Server.RateLimit > 0 {
		router.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	}

	server := &Server{
		configManager: configManager,
		pipeline:      pipeline,
		feedbackStore: feedbackStore,
		logger:        logger,
		router:        router,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/notes", s.handleProcessTranscript)
		v1.GET("/notes", s.handleListNotes)
		v1.GET("/notes/:id", s.handleGetNote)
		v1.POST("/feedback", s.handleSaveFeedback)
		v1.GET("/feedback", s.handleListFeedback)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if s.healthCheck != nil {
		if err := s.healthCheck(c.Request.Context()); err != nil {
			s.logger.WithError(err).Warn("Health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}
