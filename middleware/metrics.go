package middleware

import (
	"modesta-resort-api/metrics"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Metrics records Prometheus metrics for HTTP requests, labelled by route pattern.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			routePattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					routePattern = p
				}
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.RecordHTTPRequest(r.Method, routePattern, status, time.Since(start))
		})
	}
}
