package middleware

import (
	"net/http"
	"time"

	"driver-booking/internal/mylogger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request tagged with the chi request id.
func RequestLogger(mylog mylogger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log := mylog.Action("http_request").With(
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			if ww.Status() >= http.StatusInternalServerError {
				log.Warn("request failed")
				return
			}
			log.Debug("request served")
		})
	}
}
