package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	authEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Authentication events by type and outcome",
		},
		[]string{"event", "result"},
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"limiter"},
	)

	wsConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Currently open realtime connections",
		},
	)
)

const (
	EventRegister      = "register"
	EventLogin         = "login"
	EventRefresh       = "refresh"
	EventLogout        = "logout"
	EventPasswordReset = "password_reset"
)

func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordAuthEvent counts one authentication outcome.
func RecordAuthEvent(event string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	authEventsTotal.WithLabelValues(event, result).Inc()
}

func RecordRateLimited(limiter string) {
	rateLimitedTotal.WithLabelValues(limiter).Inc()
}

func WebsocketConnected()    { wsConnections.Inc() }
func WebsocketDisconnected() { wsConnections.Dec() }
