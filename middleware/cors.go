package middleware

import (
	"net/http"
	"strings"
)

var (
	corsMethods = strings.Join([]string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}, ", ")
	corsHeaders = strings.Join([]string{"Accept", "Authorization", "Content-Type", RequestIDHeader}, ", ")
)

// CORS allows credentialed requests from the configured origins. "*" allows
// any origin and "*.example.com" any subdomain of example.com.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := OriginAllowed(origin, allowedOrigins)
			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if allowed {
					w.Header().Set("Access-Control-Allow-Methods", corsMethods)
					w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
					w.Header().Set("Access-Control-Max-Age", "3600")
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowed {
				w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader+", Retry-After")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OriginAllowed reports whether origin matches one of the allowed entries.
func OriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range allowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" || allowed == origin {
			return true
		}
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, strings.TrimPrefix(allowed, "*")) {
			return true
		}
	}
	return false
}
