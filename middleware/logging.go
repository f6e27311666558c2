package middleware

import (
	"modesta-resort-api/common"
	"modesta-resort-api/logger"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// AccessLog writes one structured line per request. trustedProxies has the
// same meaning as in ClientIP.
func AccessLog(trustedProxies int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := logger.Log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"ip":          ClientIP(r, trustedProxies),
				"request_id":  common.RequestIDFrom(r.Context()),
			})
			switch {
			case status >= http.StatusInternalServerError:
				entry.Error("Request completed")
			case status >= http.StatusBadRequest:
				entry.Warn("Request completed")
			default:
				entry.Info("Request completed")
			}
		})
	}
}
