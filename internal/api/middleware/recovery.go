package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/oblo-platform/oblo/pkg/logger"
)

// Recovery recovers from handler panics. The crash is logged on the crashes
// logger with the url, method and actor, and the client gets a 500.
func Recovery(log logger.BusinessLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrap(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.LogAPICrash(r.Context(), r.Method, r.URL.String(), rec)

				if wrapped.wroteHeader {
					return
				}
				wrapped.Header().Set("Content-Type", "application/json")
				wrapped.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(wrapped).Encode(map[string]interface{}{
					"success":   false,
					"error":     "Internal Server Error",
					"timestamp": time.Now(),
				})
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
