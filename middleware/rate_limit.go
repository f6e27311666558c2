package middleware

import (
	"context"
	"fmt"
	"modesta-resort-api/common"
	"modesta-resort-api/logger"
	"modesta-resort-api/metrics"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RouteLimit is a fixed-window budget of Max requests per Window.
// TrustedProxies is the number of reverse proxies in front of the service.
type RouteLimit struct {
	Name           string
	Max            int
	Window         time.Duration
	Message        string
	TrustedProxies int
}

// ClientIP returns the address of the client as seen by the outermost of
// trustedProxies reverse proxies. Each trusted proxy appends the address it
// received the request from to X-Forwarded-For, so only the right-most
// trustedProxies hops are believed. With zero trusted proxies forwarded
// headers are ignored.
func ClientIP(r *http.Request, trustedProxies int) string {
	remote, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remote = r.RemoteAddr
	}
	if trustedProxies <= 0 {
		return remote
	}

	var hops []string
	for _, value := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(value, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	hops = append(hops, remote)

	idx := len(hops) - 1 - trustedProxies
	if idx < 0 {
		idx = 0
	}
	return hops[idx]
}

// INCR and PEXPIRE run atomically so a crash between them cannot leave a
// counter without expiry.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RateLimit counts requests per client IP in Redis. Redis errors let the
// request through.
func RateLimit(rdb redis.Scripter, limit RouteLimit) func(http.Handler) http.Handler {
	message := limit.Message
	if message == "" {
		message = "Too many requests, please try again later."
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("rl:%s:%s", limit.Name, ClientIP(r, limit.TrustedProxies))

			count, ttl, err := hit(r.Context(), rdb, key, limit.Window)
			if err != nil {
				logger.Log.WithError(err).WithField("limiter", limit.Name).Warn("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			remaining := limit.Max - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > limit.Max {
				retryAfter := int64((ttl + time.Second - 1) / time.Second)
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				metrics.RecordRateLimited(limit.Name)
				common.NewAppError(http.StatusTooManyRequests, message, nil).Send(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hit(ctx context.Context, rdb redis.Scripter, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := fixedWindowScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit reply: %v", res)
	}
	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}
