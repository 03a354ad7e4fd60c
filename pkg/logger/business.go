package logger

import (
	"context"
	"time"
)

// Logger names the HTTP host and lifecycle logs are written to
const (
	RoutesLoggerName      = "routes"
	CrashesLoggerName     = "crashes"
	MiddlewaresLoggerName = "app.middlewares"
)

// BusinessLogger defines the request and lifecycle logging operations shared
// by the server and the CLI
type BusinessLogger interface {
	// API operations
	LogAPIRequest(ctx context.Context, method, path, userAgent, remoteAddr string)
	LogAPIResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
	LogAPIError(ctx context.Context, method, path string, err error, statusCode int)
	LogAPICrash(ctx context.Context, method, url string, recovered interface{})

	// System operations
	LogComponentStart(ctx context.Context, component string, config interface{})
	LogComponentStop(ctx context.Context, component string, uptime time.Duration)
	LogComponentError(ctx context.Context, component string, err error)
	LogComponentHealth(ctx context.Context, component string, healthy bool, checks map[string]string)
}

// businessLoggerImpl implements BusinessLogger
type businessLoggerImpl struct {
	manager *Manager
}

// NewBusinessLogger creates a new business logger
func NewBusinessLogger(manager *Manager) BusinessLogger {
	return &businessLoggerImpl{
		manager: manager,
	}
}

func (bl *businessLoggerImpl) named(ctx context.Context, name string) *Entry {
	return bl.manager.GetLogger(name).WithFields(FromContext(ctx).ToFields())
}

// API operations
func (bl *businessLoggerImpl) LogAPIRequest(ctx context.Context, method, path, userAgent, remoteAddr string) {
	bl.named(ctx, RoutesLoggerName).WithFields(Fields{
		"method":      method,
		"path":        path,
		"user_agent":  userAgent,
		"remote_addr": remoteAddr,
	}).Debug("API request received")
}

func (bl *businessLoggerImpl) LogAPIResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	entry := bl.named(ctx, RoutesLoggerName).WithFields(Fields{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
		"duration":    duration,
		"duration_ms": duration.Milliseconds(),
	})

	switch {
	case statusCode >= 500:
		entry.Error("API request completed")
	case statusCode >= 400:
		entry.Warn("API request completed")
	default:
		entry.Info("API request completed")
	}
}

func (bl *businessLoggerImpl) LogAPIError(ctx context.Context, method, path string, err error, statusCode int) {
	bl.named(ctx, RoutesLoggerName).WithFields(Fields{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
		"error":       err.Error(),
	}).Error("API request failed")
}

// LogAPICrash records a recovered handler panic on the crashes logger, and a
// shorter notice on the middleware logger
func (bl *businessLoggerImpl) LogAPICrash(ctx context.Context, method, url string, recovered interface{}) {
	fields := Fields{
		"method": method,
		"url":    url,
		"panic":  recovered,
	}
	if actor := FromContext(ctx).Actor; actor != "" {
		fields["actor"] = actor
	}
	bl.named(ctx, CrashesLoggerName).WithFields(fields).Errorf("Unhandled error on %s %s", method, url)
	bl.named(ctx, MiddlewaresLoggerName).WithField("panic", recovered).Error("Request crashed")
}

// System operations
func (bl *businessLoggerImpl) LogComponentStart(ctx context.Context, component string, config interface{}) {
	bl.named(ctx, component).WithFields(Fields{
		"component": component,
		"operation": "start",
		"config":    config,
	}).Info("Component starting")
}

func (bl *businessLoggerImpl) LogComponentStop(ctx context.Context, component string, uptime time.Duration) {
	bl.named(ctx, component).WithFields(Fields{
		"component": component,
		"operation": "stop",
		"uptime":    uptime,
	}).Info("Component stopped")
}

func (bl *businessLoggerImpl) LogComponentError(ctx context.Context, component string, err error) {
	bl.named(ctx, component).WithFields(Fields{
		"component": component,
		"operation": "error",
		"error":     err.Error(),
	}).Error("Component error occurred")
}

func (bl *businessLoggerImpl) LogComponentHealth(ctx context.Context, component string, healthy bool, checks map[string]string) {
	entry := bl.named(ctx, component).WithFields(Fields{
		"component": component,
		"operation": "health_check",
		"healthy":   healthy,
		"checks":    checks,
	})
	if healthy {
		entry.Debug("Component health check")
		return
	}
	entry.Warn("Component health check failed")
}
