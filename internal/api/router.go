package api

import (
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/oblo-platform/oblo/internal/api/middleware"
	"github.com/oblo-platform/oblo/pkg/logger"

	// Import generated docs
	_ "github.com/oblo-platform/oblo/docs"
)

// setupRouter configures all API routes
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	prefix := strings.TrimRight(s.settings.BaseRouterPrefix, "/")

	// Health check endpoints
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/live", s.handleLiveness)
	mux.HandleFunc("GET /health/ready", s.handleReadiness)

	// System endpoints
	mux.HandleFunc("GET /version", s.handleVersion)

	// Logging introspection
	mux.HandleFunc("GET "+prefix+"/logging/loggers", s.handleLoggers)
	mux.HandleFunc("GET "+prefix+"/logging/sinks", s.handleSinks)
	mux.HandleFunc("POST "+prefix+"/logging/sinks/{name}/rotate", s.handleRotate)

	// Swagger UI
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Apply middleware, innermost first
	handler := middleware.Recovery(s.business)(mux)
	if s.settings.TimingMiddlewareActive {
		handler = middleware.Timing(s.logs.ForComponent(logger.MiddlewaresLoggerName))(handler)
	}
	handler = middleware.CORS(s.settings.CORSOrigins())(handler)
	if compress, err := middleware.Compress(middleware.DefaultCompressMinSize); err != nil {
		s.logger.WithError(err).Error("Response compression disabled")
	} else {
		handler = compress(handler)
	}
	handler = middleware.RequestLogger(s.business)(handler)

	return handler
}
