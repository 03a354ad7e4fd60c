package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/oblo-platform/oblo/pkg/logger"
)

// ProcessTimeHeader carries the handler time in seconds
const ProcessTimeHeader = "X-Process-Time"

// Timing logs how long each request took, as "[GET] - /path : 12ms", and
// reports it in the X-Process-Time response header. The header is measured
// when the response headers go out.
func Timing(log *logger.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tw := &timedWriter{responseWriter: wrap(w), start: start}
			next.ServeHTTP(tw, r)
			tw.stamp()
			elapsed := time.Since(start)

			log.WithFields(logger.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"duration_ms": elapsed.Milliseconds(),
			}).Infof("[%s] - %s : %dms", r.Method, r.URL.Path, elapsed.Milliseconds())
		})
	}
}

type timedWriter struct {
	*responseWriter
	start   time.Time
	stamped bool
}

func (tw *timedWriter) stamp() {
	if tw.stamped || tw.wroteHeader {
		return
	}
	tw.stamped = true
	elapsed := time.Since(tw.start).Seconds()
	tw.Header().Set(ProcessTimeHeader, strconv.FormatFloat(elapsed, 'f', 6, 64))
}

func (tw *timedWriter) WriteHeader(code int) {
	tw.stamp()
	tw.responseWriter.WriteHeader(code)
}

func (tw *timedWriter) Write(b []byte) (int, error) {
	tw.stamp()
	return tw.responseWriter.Write(b)
}
