package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oblo-platform/oblo/pkg/logger"
	"github.com/oblo-platform/oblo/pkg/types"
)

// ComponentName is the logger and component name of the HTTP host
const ComponentName = "app.api"

// Server represents the HTTP API server
type Server struct {
	addr     string
	settings *types.Settings
	logs     *logger.Manager
	business logger.BusinessLogger
	logger   *logger.Entry

	server    *http.Server
	listener  net.Listener
	startedAt time.Time
	ready     atomic.Bool
	mu        sync.Mutex
}

// NewServer creates a new API server listening on addr
func NewServer(addr string, settings *types.Settings, logs *logger.Manager) *Server {
	return &Server{
		addr:     addr,
		settings: settings,
		logs:     logs,
		business: logger.NewBusinessLogger(logs),
		logger: logs.ForComponent(ComponentName).WithFields(logger.Fields{
			"module": "server",
			"addr":   addr,
		}),
	}
}

// Handler returns the routed and wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Addr returns the address the server listens on, once started
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start binds the listen address and serves in the background. Errors
// binding the address are returned; later serve errors are logged.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("API server already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.listener = listener
	s.startedAt = time.Now()
	s.server = &http.Server{
		Handler:      s.setupRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	s.business.LogComponentStart(ctx, ComponentName, map[string]interface{}{
		"addr":   listener.Addr().String(),
		"env":    s.settings.Env,
		"prefix": s.settings.BaseRouterPrefix,
	})

	server := s.server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.ready.Store(false)
			s.business.LogComponentError(ctx, ComponentName, err)
		}
	}()

	s.ready.Store(true)
	s.logger.WithField("operation", "start").Info("API server started successfully")
	return nil
}

// Stop stops the HTTP server gracefully, waiting for in-flight requests
// until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}

	s.ready.Store(false)
	s.logger.WithField("operation", "stop").Info("Stopping API server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}

	s.business.LogComponentStop(ctx, ComponentName, time.Since(s.startedAt))
	s.server = nil
	s.listener = nil
	return nil
}

// HTTP Handlers

// handleHealth returns overall system health
// @Summary Get system health
// @Description Returns the health of the HTTP host and the logging subsystem
// @Tags Health
// @Produce json
// @Success 200 {object} JSONResponse{data=HealthStatus} "Healthy"
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	api := ComponentHealth{Status: "healthy"}
	if !s.ready.Load() {
		api = ComponentHealth{Status: "starting", Message: "server is not accepting connections yet"}
	}

	sinks := s.logs.Sinks()
	logging := ComponentHealth{
		Status:  "healthy",
		Message: fmt.Sprintf("%d sinks configured", len(sinks)),
	}

	health := HealthStatus{
		Status: "healthy",
		Env:    s.settings.Env,
		Components: map[string]ComponentHealth{
			"api":     api,
			"logging": logging,
		},
	}
	if !s.startedAt.IsZero() {
		health.Uptime = time.Since(s.startedAt).Round(time.Second).String()
	}

	s.business.LogComponentHealth(r.Context(), ComponentName, true, map[string]string{
		"api":     api.Status,
		"logging": logging.Status,
	})
	NewJSONResponse(health).Write(w)
}

// handleLiveness returns liveness probe status
// @Summary Liveness probe
// @Description Kubernetes liveness probe endpoint - simple alive status
// @Tags Health
// @Produce json
// @Success 200 {object} JSONResponse{data=object} "Alive"
// @Router /health/live [get]
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse(map[string]string{
		"status": "alive",
	}).Write(w)
}

// handleReadiness returns readiness probe status
// @Summary Readiness probe
// @Description Kubernetes readiness probe endpoint, 503 until the server accepts connections
// @Tags Health
// @Produce json
// @Success 200 {object} JSONResponse{data=object} "Ready"
// @Failure 503 {object} JSONResponse "Not ready"
// @Router /health/ready [get]
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		NewErrorResponse("not ready").WriteWithStatus(w, http.StatusServiceUnavailable)
		return
	}
	NewJSONResponse(map[string]string{
		"status": "ready",
	}).Write(w)
}

// handleVersion returns API and application version information
// @Summary Get version information
// @Description Returns API and application version details
// @Tags System
// @Produce json
// @Success 200 {object} JSONResponse{data=APIVersion} "Version information"
// @Router /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse(GetVersion()).Write(w)
}

// handleLoggers lists the logger hierarchy
// @Summary List loggers
// @Description Returns every logger with its explicit and effective level and its sinks
// @Tags Logging
// @Produce json
// @Success 200 {object} JSONResponse{data=LoggerList} "Logger hierarchy"
// @Router /api/logging/loggers [get]
func (s *Server) handleLoggers(w http.ResponseWriter, r *http.Request) {
	loggers := s.logs.Loggers()
	NewJSONResponse(LoggerList{
		Total:   len(loggers),
		Loggers: loggers,
	}).Write(w)
}

// handleSinks lists the sinks
// @Summary List sinks
// @Description Returns every sink with its level and, for file sinks, rotation statistics
// @Tags Logging
// @Produce json
// @Success 200 {object} JSONResponse{data=SinkList} "Sinks"
// @Router /api/logging/sinks [get]
func (s *Server) handleSinks(w http.ResponseWriter, r *http.Request) {
	sinks := s.logs.Sinks()
	NewJSONResponse(SinkList{
		Total: len(sinks),
		Sinks: sinks,
	}).Write(w)
}

// handleRotate rotates one file sink
// @Summary Rotate a sink
// @Description Closes the sink's current file, keeps it as a backup and starts a new one
// @Tags Logging
// @Produce json
// @Param name path string true "Sink name"
// @Success 200 {object} JSONResponse{data=object} "Rotated"
// @Failure 400 {object} JSONResponse "Sink has no file"
// @Failure 404 {object} JSONResponse "Unknown sink"
// @Router /api/logging/sinks/{name}/rotate [post]
func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	err := s.logs.RotateLog(name)
	switch {
	case errors.Is(err, logger.ErrUnknownSink):
		NewErrorResponse(err.Error()).WriteWithStatus(w, http.StatusNotFound)
		return
	case errors.Is(err, logger.ErrNotFileSink):
		NewErrorResponse(err.Error()).WriteWithStatus(w, http.StatusBadRequest)
		return
	case err != nil:
		s.business.LogAPIError(r.Context(), r.Method, r.URL.Path, err, http.StatusInternalServerError)
		NewErrorResponse("Failed to rotate sink").Write(w)
		return
	}

	s.logger.WithFields(logger.Fields{
		"operation":  "rotate",
		"sink":       name,
		"request_id": logger.RequestIDFromContext(r.Context()),
	}).Info("Sink rotated")

	NewJSONResponse(map[string]string{
		"sink":   name,
		"status": "rotated",
	}).Write(w)
}
