package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response represents a standard API response
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewJSONResponse creates a new successful JSON response
func NewJSONResponse(data interface{}) *Response {
	return &Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err string) *Response {
	return &Response{
		Success:   false,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// Write writes the response with 200, or 500 for an error response
func (r *Response) Write(w http.ResponseWriter) {
	if r.Success {
		r.WriteWithStatus(w, http.StatusOK)
		return
	}
	r.WriteWithStatus(w, http.StatusInternalServerError)
}

// WriteWithStatus writes the response with a custom status code
func (r *Response) WriteWithStatus(w http.ResponseWriter, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(r)
}
