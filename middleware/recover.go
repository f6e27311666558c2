package middleware

import (
	"fmt"
	"modesta-resort-api/common"
	"modesta-resort-api/logger"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
)

// Recoverer turns a handler panic into a 500 and reports it to Sentry.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.Scope().SetTag("request_id", common.RequestIDFrom(r.Context()))
				hub.Recover(rec)

				logger.Log.WithField("stack", string(debug.Stack())).
					WithField("request_id", common.RequestIDFrom(r.Context())).
					Error(fmt.Sprintf("panic: %v", rec))

				common.NewAppError(http.StatusInternalServerError, "Internal server error", nil).Send(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
