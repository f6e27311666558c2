package router

import (
	"fmt"
	"modesta-resort-api/common"
	_ "modesta-resort-api/docs"
	"modesta-resort-api/handler"
	"modesta-resort-api/middleware"
	"modesta-resort-api/model"
	"modesta-resort-api/realtime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Limits holds the two fixed-window budgets applied to the API.
type Limits struct {
	APIMax     int
	APIWindow  time.Duration
	AuthMax    int
	AuthWindow time.Duration
}

type Deps struct {
	AuthHandler   *handler.AuthHandler
	RoomHandler   *handler.RoomHandler
	AdminHandler  *handler.AdminHandler
	Authenticator *handler.Authenticator
	Hub           *realtime.Hub
	Redis         redis.Scripter

	APIVersion     string
	AllowedOrigins []string
	Production     bool
	TrustedProxies int
	Limits         Limits
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recoverer())
	r.Use(middleware.AccessLog(d.TrustedProxies))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(d.Production))
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.NewAppError(http.StatusNotFound, "Route not found - "+r.URL.Path, nil).Send(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.NewAppError(http.StatusMethodNotAllowed, "Method not allowed", nil).Send(w)
	})

	r.Get("/health", handler.HealthCheck(d.APIVersion))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	if d.Hub != nil {
		r.With(d.Authenticator.OptionalAuthenticate).Get("/ws", d.Hub.ServeWS)
	}

	apiLimit := middleware.RateLimit(d.Redis, middleware.RouteLimit{
		Name:           "api",
		Max:            d.Limits.APIMax,
		Window:         d.Limits.APIWindow,
		TrustedProxies: d.TrustedProxies,
	})
	authLimit := middleware.RateLimit(d.Redis, middleware.RouteLimit{
		Name:           "auth",
		Max:            d.Limits.AuthMax,
		Window:         d.Limits.AuthWindow,
		Message:        "Too many authentication attempts, please try again later.",
		TrustedProxies: d.TrustedProxies,
	})

	r.Route(fmt.Sprintf("/api/%s", d.APIVersion), func(r chi.Router) {
		r.Use(apiLimit)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handler.ErrorHandlingMiddleware(d.AuthHandler.Register))
			r.Post("/refresh", handler.ErrorHandlingMiddleware(d.AuthHandler.Refresh))

			r.Group(func(r chi.Router) {
				r.Use(authLimit)
				r.Post("/login", handler.ErrorHandlingMiddleware(d.AuthHandler.Login))
				r.Post("/forgot-password", handler.ErrorHandlingMiddleware(d.AuthHandler.ForgotPassword))
				r.Post("/reset-password", handler.ErrorHandlingMiddleware(d.AuthHandler.ResetPassword))
			})

			r.Group(func(r chi.Router) {
				r.Use(d.Authenticator.Authenticate)
				r.Post("/logout", handler.ErrorHandlingMiddleware(d.AuthHandler.Logout))
				r.Get("/me", handler.ErrorHandlingMiddleware(d.AuthHandler.Me))
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/categories", handler.ErrorHandlingMiddleware(d.RoomHandler.ListCategories))
			r.Get("/categories/{slug}", handler.ErrorHandlingMiddleware(d.RoomHandler.GetCategory))
			r.With(d.Authenticator.OptionalAuthenticate).
				Post("/check-availability", handler.ErrorHandlingMiddleware(d.RoomHandler.CheckAvailability))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(d.Authenticator.Authenticate)
			r.Use(handler.Authorize(model.RoleAdmin, model.RoleSuperAdmin))
			r.Post("/users/{id}/deactivate", handler.ErrorHandlingMiddleware(d.AdminHandler.DeactivateUser))
		})
	})

	return r
}
