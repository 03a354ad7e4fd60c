package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/oblo-platform/oblo/pkg/logger"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with a request id, stores it in the request
// context and logs the request and its outcome on the routes logger. An
// incoming X-Request-ID is reused.
func RequestLogger(log logger.BusinessLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx := logger.WithContext(r.Context(), logger.LogContext{
				RequestID: requestID,
				Method:    r.Method,
				URL:       r.URL.String(),
				StartTime: start,
			})
			r = r.WithContext(ctx)
			w.Header().Set(RequestIDHeader, requestID)

			log.LogAPIRequest(ctx, r.Method, r.URL.Path, r.UserAgent(), r.RemoteAddr)

			wrapped := wrap(w)
			defer func() {
				log.LogAPIResponse(ctx, r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// responseWriter remembers the status code written by the handler
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
