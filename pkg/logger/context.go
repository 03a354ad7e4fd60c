package logger

import (
	"context"
	"time"
)

// Context keys for logger context
type loggerContextKey string

const (
	logContextKey loggerContextKey = "log_context"
	RequestIDKey  loggerContextKey = "request_id"
)

// LogContext represents structured logging context
type LogContext struct {
	Component string                 `json:"component,omitempty"`
	Module    string                 `json:"module,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	Actor     string                 `json:"actor,omitempty"`
	Domain    string                 `json:"domain,omitempty"`
	Method    string                 `json:"method,omitempty"`
	URL       string                 `json:"url,omitempty"`
	StartTime time.Time              `json:"start_time,omitempty"`
	Duration  time.Duration          `json:"duration,omitempty"`
	Custom    map[string]interface{} `json:"custom,omitempty"`
}

// ToFields converts LogContext to logger Fields
func (lc LogContext) ToFields() Fields {
	fields := Fields{}

	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set("component", lc.Component)
	set("module", lc.Module)
	set("operation", lc.Operation)
	set("request_id", lc.RequestID)
	set("session_id", lc.SessionID)
	set("actor", lc.Actor)
	set("domain", lc.Domain)
	set("method", lc.Method)
	set("url", lc.URL)

	if !lc.StartTime.IsZero() {
		fields["start_time"] = lc.StartTime
	}
	if lc.Duration > 0 {
		fields["duration"] = lc.Duration
		fields["duration_ms"] = lc.Duration.Milliseconds()
	}

	// Add custom fields
	for k, v := range lc.Custom {
		fields[k] = v
	}

	return fields
}

// WithContext adds logging context to Go context, merged over any context
// already present
func WithContext(ctx context.Context, logCtx LogContext) context.Context {
	merged := FromContext(ctx).Merge(logCtx)
	ctx = context.WithValue(ctx, logContextKey, merged)
	if merged.RequestID != "" {
		ctx = context.WithValue(ctx, RequestIDKey, merged.RequestID)
	}
	return ctx
}

// FromContext extracts logging context from Go context
func FromContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}

	var lc LogContext
	if s, ok := ctx.Value(RequestIDKey).(string); ok {
		lc.RequestID = s
	}
	return lc
}

// RequestIDFromContext returns the request id stored in ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	return FromContext(ctx).RequestID
}

// Merge merges two LogContext objects
func (lc LogContext) Merge(other LogContext) LogContext {
	result := lc

	pick := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	pick(&result.Component, other.Component)
	pick(&result.Module, other.Module)
	pick(&result.Operation, other.Operation)
	pick(&result.RequestID, other.RequestID)
	pick(&result.SessionID, other.SessionID)
	pick(&result.Actor, other.Actor)
	pick(&result.Domain, other.Domain)
	pick(&result.Method, other.Method)
	pick(&result.URL, other.URL)

	if !other.StartTime.IsZero() {
		result.StartTime = other.StartTime
	}
	if other.Duration > 0 {
		result.Duration = other.Duration
	}

	// Merge custom fields
	if len(other.Custom) > 0 || len(lc.Custom) > 0 {
		custom := make(map[string]interface{}, len(lc.Custom)+len(other.Custom))
		for k, v := range lc.Custom {
			custom[k] = v
		}
		for k, v := range other.Custom {
			custom[k] = v
		}
		result.Custom = custom
	}

	return result
}
