package api

import (
	"time"

	"github.com/oblo-platform/oblo/pkg/logger"
)

// JSONResponse documents the standard response envelope
// @Description Standard API response wrapper
type JSONResponse struct {
	Success   bool        `json:"success" example:"true"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp" example:"2024-05-01T10:00:00Z"`
} // @name JSONResponse

// HealthStatus is the overall health report
// @Description System health check response
type HealthStatus struct {
	Status     string                     `json:"status" example:"healthy"`
	Env        string                     `json:"env" example:"dev"`
	Uptime     string                     `json:"uptime" example:"1h2m3s"`
	Components map[string]ComponentHealth `json:"components"`
} // @name HealthStatus

// ComponentHealth is the health of a single component
type ComponentHealth struct {
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message,omitempty"`
} // @name ComponentHealth

// LoggerList lists the logger hierarchy
type LoggerList struct {
	Total   int                  `json:"total"`
	Loggers []logger.LoggerInfo `json:"loggers"`
} // @name LoggerList

// SinkList lists the configured sinks and their file state
type SinkList struct {
	Total int               `json:"total"`
	Sinks []logger.SinkInfo `json:"sinks"`
} // @name SinkList
